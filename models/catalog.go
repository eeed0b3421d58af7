package models

// PagedResult represents one page of the product listing
type PagedResult struct {
	Items      []ProductSummary `json:"items"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
	// HasMore is set when the upstream gave no pagination metadata and the
	// page came back full, so there may be another one.
	HasMore bool `json:"hasMore"`
}

// ProductListResponse is the body returned by GET /api/products
type ProductListResponse struct {
	Items      []ProductSummary `json:"items"`
	TotalPages int              `json:"totalPages"`
	TotalItems int              `json:"totalItems"`
	HasMore    bool             `json:"hasMore"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	HasPrev    bool             `json:"hasPrev"`
	HasNext    bool             `json:"hasNext"`
	Pages      []int            `json:"pages"`
	Query      ProductQuery     `json:"query"`
	Categories []string         `json:"categories"`
}

// ProductDetailResponse is the body returned by GET /api/products/:id
type ProductDetailResponse struct {
	ProductDetail
	FormattedPrice string `json:"formattedPrice"`
	InStock        bool   `json:"inStock"`
	ReviewSort     string `json:"reviewSort"`
}

// ErrorResponse is the JSON body written for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}
