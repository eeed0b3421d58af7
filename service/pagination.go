package service

import (
	"errors"
	"fmt"

	"quickcart-emporium/models"
)

// ErrTransitionDisabled is returned when a pager move is not allowed from
// the current page
var ErrTransitionDisabled = errors.New("page transition not allowed")

// Pager is the listing's pagination state. Page is 1-based.
type Pager struct {
	Page       int
	TotalPages int
	// HasMore enables Next past TotalPages when the upstream could not say
	// how many pages exist
	HasMore bool
}

// NewPager creates a Pager for the given result page
func NewPager(page int, result models.PagedResult) Pager {
	if page < 1 {
		page = 1
	}
	total := result.TotalPages
	if total < 1 {
		total = 1
	}
	return Pager{Page: page, TotalPages: total, HasMore: result.HasMore}
}

func (p Pager) CanNext() bool {
	return p.Page < p.TotalPages || p.HasMore
}

func (p Pager) CanPrev() bool {
	return p.Page > 1
}

func (p Pager) CanGoto(k int) bool {
	return k >= 1 && k <= p.TotalPages
}

// Next moves to the following page
func (p Pager) Next() (Pager, error) {
	if !p.CanNext() {
		return p, fmt.Errorf("next from page %d of %d: %w", p.Page, p.TotalPages, ErrTransitionDisabled)
	}
	p.Page++
	return p, nil
}

// Prev moves to the preceding page
func (p Pager) Prev() (Pager, error) {
	if !p.CanPrev() {
		return p, fmt.Errorf("prev from page %d: %w", p.Page, ErrTransitionDisabled)
	}
	p.Page--
	return p, nil
}

// Goto jumps to page k
func (p Pager) Goto(k int) (Pager, error) {
	if !p.CanGoto(k) {
		return p, fmt.Errorf("goto %d of %d: %w", k, p.TotalPages, ErrTransitionDisabled)
	}
	p.Page = k
	return p, nil
}

// MaxPageNumbers bounds how many page links PageNumbers returns
const MaxPageNumbers = 10

// PageNumbers lists the pages that can be jumped to, at most MaxPageNumbers
// of them in a window around the current page
func (p Pager) PageNumbers() []int {
	start := p.Page - MaxPageNumbers/2
	if start < 1 {
		start = 1
	}
	end := start + MaxPageNumbers - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - MaxPageNumbers + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ListingState tracks the query behind the product listing.
// Changing the search text, category or sort goes back to page 1.
type ListingState struct {
	query models.ProductQuery
}

// NewListingState creates a ListingState starting from query
func NewListingState(query models.ProductQuery) *ListingState {
	return &ListingState{query: query.Normalized()}
}

// Query returns the current query
func (s *ListingState) Query() models.ProductQuery {
	return s.query
}

func (s *ListingState) SetSearch(search string) models.ProductQuery {
	s.query.Search = search
	return s.resetPage()
}

func (s *ListingState) SetCategory(category string) models.ProductQuery {
	s.query.Category = category
	return s.resetPage()
}

func (s *ListingState) SetSort(sortBy, sortOrder string) models.ProductQuery {
	s.query.SortBy = sortBy
	s.query.SortOrder = sortOrder
	return s.resetPage()
}

// SetPage changes only the page
func (s *ListingState) SetPage(page int) models.ProductQuery {
	s.query.Page = page
	s.query = s.query.Normalized()
	return s.query
}

// Apply moves the state to next. The page is kept only when search,
// category and sort are unchanged.
func (s *ListingState) Apply(next models.ProductQuery) models.ProductQuery {
	next = next.Normalized()
	if filtersChanged(s.query, next) {
		next.Page = models.DefaultPage
	}
	s.query = next
	return s.query
}

// Reset clears every filter, keeping the page size
func (s *ListingState) Reset() models.ProductQuery {
	s.query = models.ProductQuery{Limit: s.query.Limit}.Normalized()
	return s.query
}

func (s *ListingState) resetPage() models.ProductQuery {
	s.query.Page = models.DefaultPage
	s.query = s.query.Normalized()
	return s.query
}

func filtersChanged(a, b models.ProductQuery) bool {
	return a.Search != b.Search ||
		a.Category != b.Category ||
		a.SortBy != b.SortBy ||
		a.SortOrder != b.SortOrder
}
