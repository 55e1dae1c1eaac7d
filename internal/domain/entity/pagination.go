package entity

// PaginationParams represents pagination request parameters
type PaginationParams struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// PaginationMeta represents pagination metadata in responses
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// Pagination constants
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
	DefaultPage     = 1
)

// Normalize clamps page and limit into the accepted range.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < DefaultPage {
		p.Page = DefaultPage
	}
	if p.Limit < MinPageSize {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the row offset of the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPaginationMeta builds response metadata for a normalized request.
func NewPaginationMeta(p PaginationParams, total int64) PaginationMeta {
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		totalPages++
	}
	return PaginationMeta{
		CurrentPage: p.Page,
		PerPage:     p.Limit,
		Total:       total,
		TotalPages:  totalPages,
	}
}
