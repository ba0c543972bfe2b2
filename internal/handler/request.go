package handler

import (
	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/deppfellow/contosopizza/internal/validation"
)

// IDParam binds the :id path parameter.
type IDParam struct {
	ID int64 `param:"id" json:"-" validate:"gt=0"`
}

func (r *IDParam) Validate() error {
	return validation.Struct(r)
}

// PageQuery binds ?page= and ?limit= of list endpoints.
type PageQuery struct {
	Page  int `query:"page" json:"-" validate:"omitempty,gte=1"`
	Limit int `query:"limit" json:"-" validate:"omitempty,gte=1,lte=100"`
}

// pageAndLimit applies the defaults to unset values.
func (q PageQuery) pageAndLimit() (int, int) {
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = model.DefaultPageLimit
	}
	return page, limit
}

type ListRequest struct {
	PageQuery
}

func (r *ListRequest) Validate() error {
	return validation.Struct(r)
}

// ListByParentRequest lists the children of the :id resource.
type ListByParentRequest struct {
	IDParam
	PageQuery
}

func (r *ListByParentRequest) Validate() error {
	return validation.Struct(r)
}

// EmptyRequest is bound by endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}
