package handler

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/server"
	"github.com/deppfellow/contosopizza/internal/service"
	"github.com/deppfellow/contosopizza/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	Handler
	products *service.ProductService
}

func NewProductHandler(s *server.Server, products *service.ProductService) *ProductHandler {
	return &ProductHandler{
		Handler:  NewHandler(s),
		products: products,
	}
}

type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,max=100"`
	Price decimal.Decimal `json:"price" validate:"price"`
}

func (r *CreateProductRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateProductRequest struct {
	IDParam
	Name  *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,price"`
}

func (r *UpdateProductRequest) Validate() error {
	return validation.Struct(r)
}

func (r *UpdateProductRequest) apply(p *model.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context, req *CreateProductRequest) (*model.Product, error) {
	return h.products.CreateProduct(c.Request().Context(), &model.Product{
		Name:  req.Name,
		Price: req.Price,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context, req *IDParam) (*model.Product, error) {
	return h.products.GetProduct(c.Request().Context(), req.ID)
}

func (h *ProductHandler) ListProducts(c echo.Context, req *ListRequest) (*model.PaginatedResponse[model.Product], error) {
	page, limit := req.pageAndLimit()
	return h.products.ListProducts(c.Request().Context(), page, limit)
}

func (h *ProductHandler) UpdateProduct(c echo.Context, req *UpdateProductRequest) (*model.Product, error) {
	return h.products.UpdateProduct(c.Request().Context(), req.ID, req.apply)
}

func (h *ProductHandler) DeleteProduct(c echo.Context, req *IDParam) error {
	return h.products.DeleteProduct(c.Request().Context(), req.ID)
}

// ExportMenu renders the whole catalog as CSV.
func (h *ProductHandler) ExportMenu(c echo.Context, req *EmptyRequest) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "name", "price"})

	for page := 1; ; page++ {
		products, err := h.products.ListProducts(c.Request().Context(), page, model.MaxPageLimit)
		if err != nil {
			return nil, err
		}
		for _, p := range products.Data {
			_ = w.Write([]string{strconv.FormatInt(p.ID, 10), p.Name, p.Price.StringFixed(2)})
		}
		if page >= products.TotalPages {
			break
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
