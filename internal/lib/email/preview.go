package email

import (
	"time"

	"github.com/pkg/errors"
)

var previewTime = time.Date(2024, time.March, 1, 18, 30, 0, 0, time.UTC)

// PreviewData contains sample template data for local preview.
var PreviewData = map[Template]any{
	TemplateOrderConfirmation: OrderConfirmation{
		CustomerName: "John",
		OrderID:      42,
		Placed:       previewTime,
		Lines: []OrderLine{
			{Product: "Margherita", Quantity: 2, Subtotal: "19.90"},
			{Product: "Pepperoni", Quantity: 1, Subtotal: "11.50"},
		},
		Total: "31.40",
	},
	TemplateOrderFulfilled: OrderFulfilled{
		CustomerName: "John",
		OrderID:      42,
		Fulfilled:    previewTime.Add(25 * time.Minute),
	},
}

// Preview renders a template with its sample data.
func Preview(name Template) (string, error) {
	data, ok := PreviewData[name]
	if !ok {
		return "", errors.Errorf("no preview data for template %s", name)
	}
	return Render(name, data)
}
