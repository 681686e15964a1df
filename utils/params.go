package utils

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 60
)

type QueryOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // asc or desc
}

// Skip is the number of documents before the current page.
func (q QueryOptions) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// ParseQueryOptions reads page, limit, sortBy and sortOrder from the query string.
func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	sortBy := strings.TrimSpace(q.Get("sortBy"))
	if sortBy == "" {
		sortBy = "createdAt"
	}
	order := strings.ToLower(q.Get("sortOrder"))
	if order != "asc" {
		order = "desc"
	}

	return QueryOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: order,
	}
}
