package repository

import (
	"time"

	"github.com/deppfellow/contosopizza/internal/model"
)

// Table names, as created by the migrations.
const (
	TableCustomers    = "customers"
	TableProducts     = "products"
	TableOrders       = "orders"
	TableOrderDetails = "order_details"
)

var customerMapping = &Mapping[model.Customer]{
	Table:   TableCustomers,
	Rank:    0,
	Columns: []string{"first_name", "last_name", "address", "phone", "email"},
	Key:     func(c *model.Customer) *int64 { return &c.ID },
	Values: func(c *model.Customer) []any {
		return []any{c.FirstName, c.LastName, c.Address, c.Phone, c.Email}
	},
}

var productMapping = &Mapping[model.Product]{
	Table:   TableProducts,
	Rank:    0,
	Columns: []string{"name", "price"},
	Key:     func(p *model.Product) *int64 { return &p.ID },
	Values: func(p *model.Product) []any {
		return []any{p.Name, p.Price}
	},
}

var orderMapping = &Mapping[model.Order]{
	Table:   TableOrders,
	Rank:    1,
	Columns: []string{"order_placed", "order_fulfilled", "customer_id"},
	Key:     func(o *model.Order) *int64 { return &o.ID },
	Values: func(o *model.Order) []any {
		return []any{o.OrderPlaced, o.OrderFulfilled, o.CustomerID}
	},
	BeforeSave: func(o *model.Order) {
		if o.Customer != nil && o.Customer.ID != 0 {
			o.CustomerID = o.Customer.ID
		}
		if o.OrderPlaced.IsZero() {
			o.OrderPlaced = time.Now().UTC()
		}
	},
	References: []Reference[model.Order]{
		{Table: TableCustomers, Key: func(o *model.Order) int64 { return o.CustomerID }},
	},
}

var orderDetailMapping = &Mapping[model.OrderDetail]{
	Table:   TableOrderDetails,
	Rank:    2,
	Columns: []string{"quantity", "product_id", "order_id"},
	Key:     func(d *model.OrderDetail) *int64 { return &d.ID },
	Values: func(d *model.OrderDetail) []any {
		return []any{d.Quantity, d.ProductID, d.OrderID}
	},
	BeforeSave: func(d *model.OrderDetail) {
		if d.Product != nil && d.Product.ID != 0 {
			d.ProductID = d.Product.ID
		}
		if d.Order != nil && d.Order.ID != 0 {
			d.OrderID = d.Order.ID
		}
	},
	References: []Reference[model.OrderDetail]{
		{Table: TableProducts, Key: func(d *model.OrderDetail) int64 { return d.ProductID }},
		{Table: TableOrders, Key: func(d *model.OrderDetail) int64 { return d.OrderID }},
	},
}
