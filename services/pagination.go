package services

import (
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// PageQuery is a normalized, 1-based page request.
type PageQuery struct {
	Page  int
	Limit int
}

func NewPageQuery(page, limit int) PageQuery {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageQuery{Page: page, Limit: limit}
}

// ParsePageQuery reads the raw page and limit query values; garbage falls back to defaults.
func ParsePageQuery(pageStr, limitStr string) PageQuery {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return NewPageQuery(page, limit)
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func NewPagination(page, limit int, total int64) Pagination {
	q := NewPageQuery(page, limit)
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    q.Page < totalPages,
		HasPrev:    q.Page > 1,
	}
}

func (q PageQuery) Pagination(total int64) Pagination {
	return NewPagination(q.Page, q.Limit, total)
}
