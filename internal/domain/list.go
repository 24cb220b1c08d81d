package domain

import "math"

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Sort directions
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ListParams holds the pagination, search and sort parameters shared by every list endpoint
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string // ASC or DESC
}

// Normalize clamps pagination into range and fills defaults
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortOrder != SortAsc {
		p.SortOrder = SortDesc
	}
	return p
}

// Offset is the row offset of the requested page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the paginated list envelope
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage wraps a result slice with its pagination metadata
func NewPage[T any](data []T, total int, p ListParams) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
