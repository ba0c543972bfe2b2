package service

import (
	"context"
	"time"

	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/deppfellow/contosopizza/internal/lib/email"
	"github.com/deppfellow/contosopizza/internal/lib/job"
	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/repository"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/shopspring/decimal"
)

// OrderNotifier queues the customer emails of an order.
type OrderNotifier interface {
	EnqueueOrderConfirmation(ctx context.Context, p job.OrderConfirmationPayload) error
	EnqueueOrderFulfilled(ctx context.Context, p job.OrderFulfilledPayload) error
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// OrderWithTotal is an order with its lines, products and total price.
type OrderWithTotal struct {
	*model.Order
	Total decimal.Decimal `json:"total"`
}

const (
	msgEmptyOrder       = "An order needs at least one line"
	msgInvalidQuantity  = "Quantity must be greater than zero"
	msgAlreadyFulfilled = "Order has already been fulfilled"
)

var codeAlreadyFulfilled = "ORDER_ALREADY_FULFILLED"

// OrderService places and fulfills orders.
type OrderService struct {
	server   *server.Server
	repos    *repository.Repositories
	notifier OrderNotifier
	now      func() time.Time
}

// NewOrderService builds the service; a nil notifier disables order emails.
func NewOrderService(s *server.Server, repos *repository.Repositories, notifier OrderNotifier) *OrderService {
	return &OrderService{
		server:   s,
		repos:    repos,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder creates an order for the customer. Lines for the same product
// are merged.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID int64, lines []OrderLine) (*OrderWithTotal, error) {
	if len(lines) == 0 {
		return nil, errs.NewBadRequestError(msgEmptyOrder, true, nil, nil, nil)
	}

	session := s.repos.NewSession()

	customer, err := session.Customers.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Customer:    customer,
		OrderPlaced: s.now(),
	}
	if err := session.Orders.Add(order); err != nil {
		return nil, err
	}

	byProduct := make(map[int64]*model.OrderDetail, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, errs.NewBadRequestError(msgInvalidQuantity, true, nil, nil, nil)
		}

		if detail, ok := byProduct[line.ProductID]; ok {
			detail.Quantity += line.Quantity
			continue
		}

		product, err := session.Products.Find(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		detail := &model.OrderDetail{
			Quantity: line.Quantity,
			Order:    order,
			Product:  product,
		}
		if err := session.OrderDetails.Add(detail); err != nil {
			return nil, err
		}
		byProduct[line.ProductID] = detail
		order.OrderDetails = append(order.OrderDetails, detail)
	}

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}

	s.server.Logger.Info().
		Int64("order_id", order.ID).
		Int64("customer_id", customer.ID).
		Int("lines", len(order.OrderDetails)).
		Msg("order placed")

	s.notifyPlaced(ctx, order)
	return &OrderWithTotal{Order: order, Total: order.Total()}, nil
}

// GetOrder loads the order with its customer, lines and products.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*OrderWithTotal, error) {
	session := s.repos.NewSession()

	order, err := session.Orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Customer, err = session.Customers.Find(ctx, order.CustomerID); err != nil {
		return nil, err
	}

	details, err := session.OrderDetails.List(ctx, repository.Query{
		Where:   map[string]any{"order_id": id},
		OrderBy: "id",
	})
	if err != nil {
		return nil, err
	}

	for _, d := range details {
		if d.Product, err = session.Products.Find(ctx, d.ProductID); err != nil {
			return nil, err
		}
		d.Order = order
	}
	order.OrderDetails = details

	return &OrderWithTotal{Order: order, Total: order.Total()}, nil
}

// ListCustomerOrders returns one page of the customer's orders, newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID int64, page, limit int) (*model.PaginatedResponse[model.Order], error) {
	session := s.repos.NewSession()

	if _, err := session.Customers.Find(ctx, customerID); err != nil {
		return nil, err
	}

	where := map[string]any{"customer_id": customerID}
	total, err := session.Orders.Count(ctx, where)
	if err != nil {
		return nil, err
	}

	orders, err := session.Orders.List(ctx, repository.Query{
		Where:      where,
		OrderBy:    "-order_placed",
		Limit:      limit,
		Offset:     model.Offset(page, limit),
		NoTracking: true,
	})
	if err != nil {
		return nil, err
	}

	return model.NewPaginatedResponse(orders, page, limit, total), nil
}

// FulfillOrder stamps the fulfillment time. An order is fulfilled once.
func (s *OrderService) FulfillOrder(ctx context.Context, id int64) (*model.Order, error) {
	session := s.repos.NewSession()

	order, err := session.Orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Fulfilled() {
		return nil, errs.NewBadRequestError(msgAlreadyFulfilled, true, &codeAlreadyFulfilled, nil, nil)
	}

	fulfilled := s.now()
	order.OrderFulfilled = &fulfilled

	if _, err := session.SaveChanges(ctx); err != nil {
		return nil, err
	}

	if order.Customer, err = session.Customers.Find(ctx, order.CustomerID); err != nil {
		s.server.Logger.Warn().Err(err).Int64("order_id", id).Msg("could not load customer for fulfilled email")
		return order, nil
	}

	s.notifyFulfilled(ctx, order)
	return order, nil
}

// DeleteOrder removes the order and its lines.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	session := s.repos.NewSession()

	order, err := session.Orders.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := session.Orders.Remove(order); err != nil {
		return err
	}

	_, err = session.SaveChanges(ctx)
	return err
}

func (s *OrderService) notifyPlaced(ctx context.Context, order *model.Order) {
	customer := order.Customer
	if s.notifier == nil || customer.Email == nil {
		return
	}

	lines := make([]email.OrderLine, 0, len(order.OrderDetails))
	for _, d := range order.OrderDetails {
		lines = append(lines, email.OrderLine{
			Product:  d.Product.Name,
			Quantity: int64(d.Quantity),
			Subtotal: d.Subtotal().StringFixed(2),
		})
	}

	err := s.notifier.EnqueueOrderConfirmation(ctx, job.OrderConfirmationPayload{
		To:           *customer.Email,
		CustomerName: customer.FirstName,
		OrderID:      order.ID,
		Placed:       order.OrderPlaced,
		Lines:        lines,
		Total:        order.Total().StringFixed(2),
	})
	if err != nil {
		s.server.Logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to enqueue order confirmation")
	}
}

func (s *OrderService) notifyFulfilled(ctx context.Context, order *model.Order) {
	customer := order.Customer
	if s.notifier == nil || customer.Email == nil {
		return
	}

	err := s.notifier.EnqueueOrderFulfilled(ctx, job.OrderFulfilledPayload{
		To:           *customer.Email,
		CustomerName: customer.FirstName,
		OrderID:      order.ID,
		Fulfilled:    *order.OrderFulfilled,
	})
	if err != nil {
		s.server.Logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to enqueue fulfilled notification")
	}
}
