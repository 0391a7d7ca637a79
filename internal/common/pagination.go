package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for catalog list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the page count from total and perPage.
func NewPagination(page, perPage, total int) Pagination {
	p := Pagination{Page: page, PerPage: perPage, TotalItems: total}
	if perPage > 0 {
		p.TotalPages = total / perPage
		if total%perPage != 0 {
			p.TotalPages++
		}
	}
	return p
}

// ParsePagination extracts page and limit query parameters. Missing,
// malformed or non-positive values fall back to page 1 and defaultPerPage.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	return page, perPage
}
