package handler

import (
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/service"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Customer *CustomerHandler
	Product  *ProductHandler
	Order    *OrderHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Customer: NewCustomerHandler(s, services.Customers),
		Product:  NewProductHandler(s, services.Products),
		Order:    NewOrderHandler(s, services.Orders),
	}
}
