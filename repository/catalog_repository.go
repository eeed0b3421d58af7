package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
)

// maxResponseBytes bounds how much of an upstream body is read
const maxResponseBytes = 10 << 20

// CatalogRepository reads products and categories from the remote catalog API
type CatalogRepository struct {
	baseURL string
	client  *http.Client
}

// NewCatalogRepository creates a new CatalogRepository.
// A zero timeout leaves requests bounded only by the caller's context.
func NewCatalogRepository(baseURL string, timeout time.Duration) *CatalogRepository {
	return &CatalogRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewCatalogRepositoryWithClient creates a CatalogRepository that sends its
// requests through client
func NewCatalogRepositoryWithClient(baseURL string, client *http.Client) *CatalogRepository {
	return &CatalogRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// productQueryValues builds the listing query string. Empty search, category
// and sort values are omitted rather than sent blank.
func productQueryValues(q models.ProductQuery) url.Values {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("skip", strconv.Itoa(q.Offset()))
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	return values
}

// ListProducts fetches one page of products matching the query
func (r *CatalogRepository) ListProducts(ctx context.Context, query models.ProductQuery) (models.PagedResult, error) {
	q := query.Normalized()
	endpoint := fmt.Sprintf("%s/products?%s", r.baseURL, productQueryValues(q).Encode())
	logger.Log.Infof("🔍 ListProducts: page=%d limit=%d skip=%d search=%q category=%q sortBy=%q sortOrder=%q",
		q.Page, q.Limit, q.Offset(), q.Search, q.Category, q.SortBy, q.SortOrder)

	status, body, err := r.get(ctx, endpoint)
	if err != nil {
		return models.PagedResult{}, &FetchError{Resource: "products", Err: err}
	}
	if status < 200 || status > 299 {
		logger.Log.Errorf("❌ ListProducts: Upstream returned status %d", status)
		return models.PagedResult{}, &FetchError{Resource: "products", StatusCode: status}
	}

	result, err := normalizeProductList(body, q.Limit)
	if err != nil {
		logger.Log.Errorf("❌ ListProducts: Error decoding response: %v", err)
		return models.PagedResult{}, &FetchError{Resource: "products", StatusCode: status, Err: err}
	}

	logger.Log.Infof("✓ ListProducts: Fetched %d products (totalPages=%d, totalItems=%d)",
		len(result.Items), result.TotalPages, result.TotalItems)
	return result, nil
}

// GetProduct fetches a single product by id. A 404 from the catalog is
// reported as found=false with no error.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*models.ProductDetail, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, nil
	}
	logger.Log.Infof("🔍 GetProduct: Fetching product id=%s", id)

	endpoint := fmt.Sprintf("%s/products/%s", r.baseURL, url.PathEscape(id))
	status, body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, false, &FetchError{Resource: "product", Err: err}
	}
	if status == http.StatusNotFound {
		logger.Log.Infof("⚠️  GetProduct: Product not found id=%s", id)
		return nil, false, nil
	}
	if status < 200 || status > 299 {
		logger.Log.Errorf("❌ GetProduct: Upstream returned status %d for id=%s", status, id)
		return nil, false, &FetchError{Resource: "product", StatusCode: status}
	}

	product, err := normalizeProductDetail(body)
	if err != nil {
		logger.Log.Errorf("❌ GetProduct: Error decoding product id=%s: %v", id, err)
		return nil, false, &FetchError{Resource: "product", StatusCode: status, Err: err}
	}
	if product.ID == "" {
		product.ID = id
	}

	logger.Log.Infof("✓ GetProduct: Fetched product id=%s with %d reviews", product.ID, len(product.Reviews))
	return product, true, nil
}

// ListCategories fetches the category names used by the filter bar
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]string, error) {
	logger.Log.Infof("🔍 ListCategories: Fetching categories")

	status, body, err := r.get(ctx, r.baseURL+"/categories")
	if err != nil {
		return nil, &FetchError{Resource: "categories", Err: err}
	}
	if status < 200 || status > 299 {
		logger.Log.Errorf("❌ ListCategories: Upstream returned status %d", status)
		return nil, &FetchError{Resource: "categories", StatusCode: status}
	}

	categories, err := normalizeCategories(body)
	if err != nil {
		logger.Log.Errorf("❌ ListCategories: Error decoding response: %v", err)
		return nil, &FetchError{Resource: "categories", StatusCode: status, Err: err}
	}

	logger.Log.Infof("✓ ListCategories: Fetched %d categories", len(categories))
	return categories, nil
}

// get issues a single GET and returns the status and body. Errors are
// transport or read failures only.
func (r *CatalogRepository) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Log.Errorf("❌ Catalog request failed: GET %s: %v", endpoint, err)
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
