package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
	"quickcart-emporium/repository"
)

// CacheTTLs sets how long each kind of catalog response is reused.
// A zero TTL disables caching for that kind.
type CacheTTLs struct {
	Listing    time.Duration
	Categories time.Duration
	Product    time.Duration
}

// DefaultCacheTTLs matches the revalidation hints of the storefront pages
var DefaultCacheTTLs = CacheTTLs{
	Listing:    60 * time.Second,
	Categories: time.Hour,
	Product:    60 * time.Second,
}

// CatalogService is a read-through cache in front of the catalog repository.
// Identical concurrent misses share one upstream call. Failures and missing
// products are never cached, and a failing store only costs the cache hit.
type CatalogService struct {
	repository repository.CatalogRepositoryInterface
	store      repository.CacheStoreInterface
	ttls       CacheTTLs
	group      singleflight.Group
}

// NewCatalogService creates a new CatalogService. A nil store disables caching.
func NewCatalogService(repo repository.CatalogRepositoryInterface, store repository.CacheStoreInterface, ttls CacheTTLs) *CatalogService {
	return &CatalogService{
		repository: repo,
		store:      store,
		ttls:       ttls,
	}
}

// Ensure CatalogService can stand in for the repository
var _ repository.CatalogRepositoryInterface = (*CatalogService)(nil)

// ListingCacheKey identifies a listing by every field of the normalized query.
// Values are escaped so shopper text can never run into a neighbouring field.
func ListingCacheKey(q models.ProductQuery) string {
	q = q.Normalized()
	return "products?" + url.Values{
		"page":      {strconv.Itoa(q.Page)},
		"limit":     {strconv.Itoa(q.Limit)},
		"search":    {q.Search},
		"category":  {q.Category},
		"sortBy":    {q.SortBy},
		"sortOrder": {q.SortOrder},
	}.Encode()
}

func productCacheKey(id string) string {
	return "product|" + strings.TrimSpace(id)
}

const categoriesCacheKey = "categories"

func (s *CatalogService) ListProducts(ctx context.Context, query models.ProductQuery) (models.PagedResult, error) {
	key := ListingCacheKey(query)

	var cached models.PagedResult
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	v, err := s.shared(ctx, key, "products", func(ctx context.Context) (interface{}, error) {
		result, err := s.repository.ListProducts(ctx, query)
		if err != nil {
			return nil, err
		}
		s.save(ctx, key, result, s.ttls.Listing)
		return result, nil
	})
	if err != nil {
		return models.PagedResult{}, err
	}
	return v.(models.PagedResult), nil
}

type productLookup struct {
	Product *models.ProductDetail
	Found   bool
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.ProductDetail, bool, error) {
	key := productCacheKey(id)

	var cached models.ProductDetail
	if s.lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	v, err := s.shared(ctx, key, "product", func(ctx context.Context) (interface{}, error) {
		product, found, err := s.repository.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			s.save(ctx, key, product, s.ttls.Product)
		}
		return productLookup{Product: product, Found: found}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(productLookup)
	return res.Product, res.Found, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	var cached []string
	if s.lookup(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}

	v, err := s.shared(ctx, categoriesCacheKey, "categories", func(ctx context.Context) (interface{}, error) {
		categories, err := s.repository.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		s.save(ctx, categoriesCacheKey, categories, s.ttls.Categories)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// shared runs fetch once for all concurrent callers of key. The upstream call
// is detached from the caller that started it, so one shopper going away does
// not fail the others; it stays bounded by the repository's client timeout.
// Each caller still stops waiting when its own context ends.
func (s *CatalogService) shared(ctx context.Context, key, resource string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fetch(detached)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Log.Debugf("Shared in-flight request for key=%s", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, &repository.FetchError{Resource: resource, Err: ctx.Err()}
	}
}

// Invalidate drops a cached listing so the next call goes upstream
func (s *CatalogService) Invalidate(ctx context.Context, query models.ProductQuery) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, ListingCacheKey(query)); err != nil {
		return fmt.Errorf("failed to invalidate listing: %w", err)
	}
	return nil
}

// lookup reports whether key was found and decoded into dst
func (s *CatalogService) lookup(ctx context.Context, key string, dst interface{}) bool {
	if s.store == nil {
		return false
	}
	payload, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Log.Warnf("⚠️  Cache read failed for key=%s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		logger.Log.Warnf("⚠️  Discarding undecodable cache entry key=%s: %v", key, err)
		return false
	}
	logger.Log.Debugf("Cache hit key=%s", key)
	return true
}

func (s *CatalogService) save(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.store == nil || ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Log.Warnf("⚠️  Cache encode failed for key=%s: %v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, payload, ttl); err != nil {
		logger.Log.Warnf("⚠️  Cache write failed for key=%s: %v", key, err)
	}
}
