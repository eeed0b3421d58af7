package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
	"quickcart-emporium/repository"
	"quickcart-emporium/service"
	"quickcart-emporium/utils"
)

// ProductController handles the product detail page requests
type ProductController struct {
	catalog repository.CatalogRepositoryInterface
	images  *service.ImageService
}

// NewProductController creates a new ProductController
func NewProductController(catalog repository.CatalogRepositoryInterface, images *service.ImageService) *ProductController {
	return &ProductController{
		catalog: catalog,
		images:  images,
	}
}

// GetProduct handles GET /api/products/:id?reviewSort=date-desc|date-asc|rating-desc|rating-asc
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GetProduct")
		return
	}

	sortParam := r.URL.Query().Get("reviewSort")
	reviewSort, ok := service.ParseReviewSort(sortParam)
	if !ok {
		logger.Log.Warnf("❌ GetProduct: Invalid reviewSort: %s", sortParam)
		writeError(w, http.StatusBadRequest, "Invalid reviewSort. Valid values: date-desc, date-asc, rating-desc, rating-asc")
		return
	}

	product, found, err := c.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, "GetProduct", err)
		return
	}
	if !found {
		logger.Log.Infof("⚠️  GetProduct: Product not found id=%s", id)
		writeError(w, http.StatusNotFound, fmt.Sprintf("Product %s not found", id))
		return
	}

	detail := *product
	detail.Reviews = service.SortReviews(product.Reviews, reviewSort)

	writeJSON(w, http.StatusOK, models.ProductDetailResponse{
		ProductDetail:  detail,
		FormattedPrice: utils.FormatPrice(detail.Price),
		InStock:        detail.InStock(),
		ReviewSort:     string(reviewSort),
	})
}

// GetProductImage handles GET /api/products/:id/images/:index?size=thumb|medium
// Returns the optimized JPEG of one gallery image
func (c *ProductController) GetProductImage(w http.ResponseWriter, r *http.Request, id string, indexStr string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GetProductImage")
		return
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		logger.Log.Warnf("❌ GetProductImage: Invalid image index: %s", indexStr)
		writeError(w, http.StatusBadRequest, "Invalid image index")
		return
	}

	size := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("size")))
	if size == "" {
		size = service.ImageSizeMedium
	}
	if size != service.ImageSizeThumb && size != service.ImageSizeMedium {
		writeError(w, http.StatusBadRequest, "Invalid size. Valid sizes: thumb, medium")
		return
	}

	data, err := c.images.ProductImage(r.Context(), id, index, size)
	if errors.Is(err, service.ErrImageNotFound) {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}
	if errors.Is(err, service.ErrImageUndecodable) {
		logger.Log.Errorf("❌ GetProductImage: Product %s image %d: %v", id, index, err)
		writeError(w, http.StatusBadGateway, "Failed to process image")
		return
	}
	if err != nil {
		writeFetchError(w, r, "GetProductImage", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Log.Errorf("❌ GetProductImage: Error writing image response: %v", err)
	}
}
