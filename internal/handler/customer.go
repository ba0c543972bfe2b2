package handler

import (
	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/service"
	"github.com/deppfellow/contosopizza/internal/validation"
	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	Handler
	customers *service.CustomerService
}

func NewCustomerHandler(s *server.Server, customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		Handler:   NewHandler(s),
		customers: customers,
	}
}

type CreateCustomerRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Address   *string `json:"address" validate:"omitempty,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validation.Struct(r)
}

// UpdateCustomerRequest changes only the fields present in the body.
type UpdateCustomerRequest struct {
	IDParam
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Address   *string `json:"address" validate:"omitempty,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *UpdateCustomerRequest) Validate() error {
	return validation.Struct(r)
}

func (r *UpdateCustomerRequest) apply(c *model.Customer) {
	if r.FirstName != nil {
		c.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		c.LastName = *r.LastName
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
}

func (h *CustomerHandler) CreateCustomer(c echo.Context, req *CreateCustomerRequest) (*model.Customer, error) {
	return h.customers.CreateCustomer(c.Request().Context(), &model.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Phone:     req.Phone,
		Email:     req.Email,
	})
}

func (h *CustomerHandler) GetCustomer(c echo.Context, req *IDParam) (*model.Customer, error) {
	return h.customers.GetCustomer(c.Request().Context(), req.ID)
}

func (h *CustomerHandler) ListCustomers(c echo.Context, req *ListRequest) (*model.PaginatedResponse[model.Customer], error) {
	page, limit := req.pageAndLimit()
	return h.customers.ListCustomers(c.Request().Context(), page, limit)
}

func (h *CustomerHandler) UpdateCustomer(c echo.Context, req *UpdateCustomerRequest) (*model.Customer, error) {
	return h.customers.UpdateCustomer(c.Request().Context(), req.ID, req.apply)
}

func (h *CustomerHandler) DeleteCustomer(c echo.Context, req *IDParam) error {
	return h.customers.DeleteCustomer(c.Request().Context(), req.ID)
}
