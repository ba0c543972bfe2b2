package handler

import (
	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/service"
	"github.com/deppfellow/contosopizza/internal/validation"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	Handler
	orders *service.OrderService
}

func NewOrderHandler(s *server.Server, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{
		Handler: NewHandler(s),
		orders:  orders,
	}
}

type OrderLineRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type PlaceOrderRequest struct {
	CustomerID int64              `json:"customerId" validate:"gt=0"`
	Lines      []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *PlaceOrderRequest) Validate() error {
	return validation.Struct(r)
}

func (h *OrderHandler) PlaceOrder(c echo.Context, req *PlaceOrderRequest) (*service.OrderWithTotal, error) {
	lines := make([]service.OrderLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return h.orders.PlaceOrder(c.Request().Context(), req.CustomerID, lines)
}

func (h *OrderHandler) GetOrder(c echo.Context, req *IDParam) (*service.OrderWithTotal, error) {
	return h.orders.GetOrder(c.Request().Context(), req.ID)
}

func (h *OrderHandler) ListCustomerOrders(c echo.Context, req *ListByParentRequest) (*model.PaginatedResponse[model.Order], error) {
	page, limit := req.pageAndLimit()
	return h.orders.ListCustomerOrders(c.Request().Context(), req.ID, page, limit)
}

func (h *OrderHandler) FulfillOrder(c echo.Context, req *IDParam) (*model.Order, error) {
	return h.orders.FulfillOrder(c.Request().Context(), req.ID)
}

func (h *OrderHandler) DeleteOrder(c echo.Context, req *IDParam) error {
	return h.orders.DeleteOrder(c.Request().Context(), req.ID)
}
