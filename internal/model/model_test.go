package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_Total(t *testing.T) {
	margherita := &Product{ID: 1, Name: "Margherita", Price: decimal.RequireFromString("9.50")}
	pepperoni := &Product{ID: 2, Name: "Pepperoni", Price: decimal.RequireFromString("11.25")}

	order := &Order{
		OrderDetails: []*OrderDetail{
			{Quantity: 2, ProductID: 1, Product: margherita},
			{Quantity: 1, ProductID: 2, Product: pepperoni},
			{Quantity: 3, ProductID: 3},
		},
	}

	assert.True(t, decimal.RequireFromString("30.25").Equal(order.Total()))
}

func TestOrder_TotalEmpty(t *testing.T) {
	assert.True(t, (&Order{}).Total().IsZero())
}

func TestOrder_Fulfilled(t *testing.T) {
	order := &Order{OrderPlaced: time.Now()}
	assert.False(t, order.Fulfilled())

	now := time.Now()
	order.OrderFulfilled = &now
	assert.True(t, order.Fulfilled())
}

func TestCustomer_FullName(t *testing.T) {
	c := &Customer{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", c.FullName())
}

func TestNewValidator_Price(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		price string
		valid bool
	}{
		{name: "zero", price: "0", valid: true},
		{name: "two decimals", price: "12.99", valid: true},
		{name: "max", price: "9999.99", valid: true},
		{name: "negative", price: "-0.01", valid: false},
		{name: "too large", price: "10000", valid: false},
		{name: "three decimals", price: "1.005", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&Product{Name: "Hawaiian", Price: decimal.RequireFromString(tt.price)})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewValidator_SkipsNavigation(t *testing.T) {
	v := NewValidator()

	// The customer behind the navigation field is invalid on purpose.
	order := &Order{CustomerID: 1, Customer: &Customer{}}
	assert.NoError(t, v.Struct(order))

	detail := &OrderDetail{Quantity: 0, ProductID: 1, OrderID: 1}
	assert.Error(t, v.Struct(detail))
}

func TestNewPaginatedResponse(t *testing.T) {
	page := NewPaginatedResponse[Product](nil, 2, 20, 41)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(41), page.Total)

	assert.Equal(t, 0, NewPaginatedResponse[Product](nil, 1, 20, 0).TotalPages)
	assert.Equal(t, 1, NewPaginatedResponse[Product](nil, 1, 20, 20).TotalPages)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 0, Offset(0, 20))
}
