package router

import (
	"net/http"

	"github.com/deppfellow/contosopizza/internal/handler"
	"github.com/deppfellow/contosopizza/internal/middleware"
	"github.com/labstack/echo/v4"
)

func registerCustomerRoutes(g *echo.Group, h *handler.Handlers) {
	ch := h.Customer
	customers := g.Group("/customers")

	customers.GET("", handler.Handle(ch.Handler, ch.ListCustomers, http.StatusOK, &handler.ListRequest{}))
	customers.POST("", handler.Handle(ch.Handler, ch.CreateCustomer, http.StatusCreated, &handler.CreateCustomerRequest{}))
	customers.GET("/:id", handler.Handle(ch.Handler, ch.GetCustomer, http.StatusOK, &handler.IDParam{}))
	customers.PATCH("/:id", handler.Handle(ch.Handler, ch.UpdateCustomer, http.StatusOK, &handler.UpdateCustomerRequest{}))
	customers.DELETE("/:id", handler.HandleNoContent(ch.Handler, ch.DeleteCustomer, http.StatusNoContent, &handler.IDParam{}))

	oh := h.Order
	customers.GET("/:id/orders", handler.Handle(oh.Handler, oh.ListCustomerOrders, http.StatusOK, &handler.ListByParentRequest{}))
}

// registerProductRoutes keeps the menu public and puts catalog writes
// behind authentication.
func registerProductRoutes(g *echo.Group, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	ph := h.Product
	products := g.Group("/products")

	products.GET("", handler.Handle(ph.Handler, ph.ListProducts, http.StatusOK, &handler.ListRequest{}))
	products.GET("/export", handler.HandleFile(ph.Handler, ph.ExportMenu, http.StatusOK, &handler.EmptyRequest{}, "menu.csv", "text/csv"))
	products.GET("/:id", handler.Handle(ph.Handler, ph.GetProduct, http.StatusOK, &handler.IDParam{}))

	products.POST("", handler.Handle(ph.Handler, ph.CreateProduct, http.StatusCreated, &handler.CreateProductRequest{}), auth.RequireAuth)
	products.PATCH("/:id", handler.Handle(ph.Handler, ph.UpdateProduct, http.StatusOK, &handler.UpdateProductRequest{}), auth.RequireAuth)
	products.DELETE("/:id", handler.HandleNoContent(ph.Handler, ph.DeleteProduct, http.StatusNoContent, &handler.IDParam{}), auth.RequireAuth)
}

func registerOrderRoutes(g *echo.Group, h *handler.Handlers) {
	oh := h.Order
	orders := g.Group("/orders")

	orders.POST("", handler.Handle(oh.Handler, oh.PlaceOrder, http.StatusCreated, &handler.PlaceOrderRequest{}))
	orders.GET("/:id", handler.Handle(oh.Handler, oh.GetOrder, http.StatusOK, &handler.IDParam{}))
	orders.POST("/:id/fulfill", handler.Handle(oh.Handler, oh.FulfillOrder, http.StatusOK, &handler.IDParam{}))
	orders.DELETE("/:id", handler.HandleNoContent(oh.Handler, oh.DeleteOrder, http.StatusNoContent, &handler.IDParam{}))
}
