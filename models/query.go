package models

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 20

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ProductQuery holds the listing parameters chosen by the shopper
type ProductQuery struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Search    string `json:"search"`
	Category  string `json:"category"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"` // "asc", "desc" or empty
}

// Normalized returns a copy of the query with defaults applied.
// Page and limit fall back to 1 and 20, text fields are trimmed and a sort
// order other than asc/desc is dropped.
func (q ProductQuery) Normalized() ProductQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	q.SortBy = strings.TrimSpace(q.SortBy)

	order := strings.ToLower(strings.TrimSpace(q.SortOrder))
	if order != SortAsc && order != SortDesc {
		order = ""
	}
	q.SortOrder = order
	return q
}

// Offset returns the zero-based index of the first record of the page
func (q ProductQuery) Offset() int {
	if q.Page < 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
