// Package model defines the entities persisted by the pizza shop:
// customers, products, orders and the lines of each order.
//
// Fields tagged `db` are columns; navigation fields are tagged `db:"-"`
// and are filled by services, never read back from a row.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer places orders.
type Customer struct {
	ID        int64   `db:"id" json:"id"`
	FirstName string  `db:"first_name" json:"firstName" validate:"required,max=100"`
	LastName  string  `db:"last_name" json:"lastName" validate:"required,max=100"`
	Address   *string `db:"address" json:"address,omitempty" validate:"omitempty,max=200"`
	Phone     *string `db:"phone" json:"phone,omitempty" validate:"omitempty,max=20"`
	Email     *string `db:"email" json:"email,omitempty" validate:"omitempty,email,max=254"`

	Orders []*Order `db:"-" json:"orders,omitempty" validate:"-"`
}

// FullName returns "First Last".
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Product is an item on the menu.
type Product struct {
	ID    int64           `db:"id" json:"id"`
	Name  string          `db:"name" json:"name" validate:"required,max=100"`
	Price decimal.Decimal `db:"price" json:"price" validate:"price"`
}

// Order groups the lines a customer bought at one time.
type Order struct {
	ID             int64      `db:"id" json:"id"`
	OrderPlaced    time.Time  `db:"order_placed" json:"orderPlaced"`
	OrderFulfilled *time.Time `db:"order_fulfilled" json:"orderFulfilled,omitempty"`
	CustomerID     int64      `db:"customer_id" json:"customerId"`

	Customer     *Customer      `db:"-" json:"customer,omitempty" validate:"-"`
	OrderDetails []*OrderDetail `db:"-" json:"orderDetails,omitempty" validate:"-"`
}

// Fulfilled reports whether the order has been fulfilled.
func (o *Order) Fulfilled() bool {
	return o.OrderFulfilled != nil
}

// Total sums the subtotal of every line. Lines without a loaded product
// count as zero.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.OrderDetails {
		total = total.Add(d.Subtotal())
	}
	return total
}

// OrderDetail is one line of an order.
type OrderDetail struct {
	ID        int64 `db:"id" json:"id"`
	Quantity  int   `db:"quantity" json:"quantity" validate:"gt=0"`
	ProductID int64 `db:"product_id" json:"productId"`
	OrderID   int64 `db:"order_id" json:"orderId"`

	Order   *Order   `db:"-" json:"-" validate:"-"`
	Product *Product `db:"-" json:"product,omitempty" validate:"-"`
}

// Subtotal is quantity times the product price.
func (d *OrderDetail) Subtotal() decimal.Decimal {
	if d.Product == nil {
		return decimal.Zero
	}
	return d.Product.Price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}
