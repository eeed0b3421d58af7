package controller

import (
	"net/http"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
	"quickcart-emporium/repository"
	"quickcart-emporium/service"
	"quickcart-emporium/utils"
)

// CatalogController handles the product listing and category requests
type CatalogController struct {
	catalog  repository.CatalogRepositoryInterface
	pageSize int
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog repository.CatalogRepositoryInterface, pageSize int) *CatalogController {
	if pageSize <= 0 {
		pageSize = models.DefaultLimit
	}
	return &CatalogController{
		catalog:  catalog,
		pageSize: pageSize,
	}
}

// ListProducts handles GET /api/products?page=2&search=phone&category=smartphones&sortBy=price&sortOrder=asc
// Example response:
// {
//   "items": [{"id": "021", "title": "...", "price": 12.5, ...}],
//   "totalPages": 2, "totalItems": 38, "hasMore": false,
//   "page": 2, "limit": 20, "hasPrev": true, "hasNext": false,
//   "pages": [1, 2], "query": {...}, "categories": ["beauty", ...]
// }
func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "ListProducts")
		return
	}

	query, err := utils.ParseProductQuery(r.URL.Query(), c.pageSize)
	if err != nil {
		logger.Log.Warnf("❌ ListProducts: Invalid query: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Products and categories load together, as the listing page shows both.
	// The view lives for one request, so nothing supersedes its query; it is
	// used for the concurrent load and the pager it derives from the result.
	view := service.NewListingView(c.catalog)
	snap := view.Load(r.Context(), query)
	if snap.Err != nil {
		writeFetchError(w, r, "ListProducts", snap.Err)
		return
	}

	categories := snap.Categories
	if categories == nil {
		categories = []string{}
	}
	response := models.ProductListResponse{
		Items:      snap.Result.Items,
		TotalPages: snap.Result.TotalPages,
		TotalItems: snap.Result.TotalItems,
		HasMore:    snap.Result.HasMore,
		Page:       snap.Pager.Page,
		Limit:      snap.Query.Limit,
		HasPrev:    snap.Pager.CanPrev(),
		HasNext:    snap.Pager.CanNext(),
		Pages:      snap.Pager.PageNumbers(),
		Query:      snap.Query,
		Categories: categories,
	}

	logger.Log.Infof("✅ ListProducts: Returning %d products (page %d of %d)", len(response.Items), response.Page, response.TotalPages)
	writeJSON(w, http.StatusOK, response)
}

// ListCategories handles GET /api/categories
func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "ListCategories")
		return
	}

	categories, err := c.catalog.ListCategories(r.Context())
	if err != nil {
		writeFetchError(w, r, "ListCategories", err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}
