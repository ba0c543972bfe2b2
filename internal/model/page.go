package model

// Paging limits for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginatedResponse is one page of a listed collection.
type PaginatedResponse[T any] struct {
	Data       []*T  `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResponse builds a page; page is 1-based.
func NewPaginatedResponse[T any](data []*T, page, limit int, total int64) *PaginatedResponse[T] {
	if data == nil {
		data = []*T{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the number of rows before the given 1-based page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// PageInfo reports the page position for tracing.
func (p *PaginatedResponse[T]) PageInfo() (page, limit int, total int64) {
	return p.Page, p.Limit, p.Total
}
