package email

import (
	"context"
	"fmt"
	"time"
)

// OrderLine is one row of the order confirmation table.
type OrderLine struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// OrderConfirmation is the data of TemplateOrderConfirmation.
type OrderConfirmation struct {
	CustomerName string
	OrderID      int64
	Placed       time.Time
	Lines        []OrderLine
	Total        string
}

// OrderFulfilled is the data of TemplateOrderFulfilled.
type OrderFulfilled struct {
	CustomerName string
	OrderID      int64
	Fulfilled    time.Time
}

// SendOrderConfirmationEmail tells a customer their order was received.
func (c *Client) SendOrderConfirmationEmail(ctx context.Context, to string, data OrderConfirmation) error {
	return c.SendEmail(
		ctx,
		to,
		fmt.Sprintf("Contoso Pizza order #%d received", data.OrderID),
		TemplateOrderConfirmation,
		data,
	)
}

// SendOrderFulfilledEmail tells a customer their order left the kitchen.
func (c *Client) SendOrderFulfilledEmail(ctx context.Context, to string, data OrderFulfilled) error {
	return c.SendEmail(
		ctx,
		to,
		fmt.Sprintf("Contoso Pizza order #%d is on its way", data.OrderID),
		TemplateOrderFulfilled,
		data,
	)
}
