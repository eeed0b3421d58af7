package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"quickcart-emporium/models"
)

// ParseProductQuery reads a listing query from URL parameters.
// Besides sortBy/sortOrder it accepts the combined form sort=price-asc used
// by the storefront's sort selector. Missing page and limit fall back to 1
// and defaultLimit; present but invalid values are an error.
func ParseProductQuery(values url.Values, defaultLimit int) (models.ProductQuery, error) {
	q := models.ProductQuery{
		Page:      models.DefaultPage,
		Limit:     defaultLimit,
		Search:    strings.TrimSpace(values.Get("search")),
		Category:  strings.TrimSpace(values.Get("category")),
		SortBy:    strings.TrimSpace(values.Get("sortBy")),
		SortOrder: strings.TrimSpace(values.Get("sortOrder")),
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return models.ProductQuery{}, fmt.Errorf("page must be a positive integer, got %q", raw)
		}
		q.Page = page
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return models.ProductQuery{}, fmt.Errorf("limit must be between 1 and 100, got %q", raw)
		}
		q.Limit = limit
	}

	if combined := strings.TrimSpace(values.Get("sort")); combined != "" && q.SortBy == "" {
		sortBy, sortOrder, _ := strings.Cut(combined, "-")
		q.SortBy = sortBy
		q.SortOrder = sortOrder
	}

	if order := strings.ToLower(q.SortOrder); order != "" && order != models.SortAsc && order != models.SortDesc {
		return models.ProductQuery{}, fmt.Errorf("sortOrder must be asc or desc, got %q", q.SortOrder)
	}

	return q.Normalized(), nil
}
