package repository

import (
	"context"
	"time"

	"quickcart-emporium/models"
)

// CatalogRepositoryInterface defines the contract for reading the remote catalog
type CatalogRepositoryInterface interface {
	ListProducts(ctx context.Context, query models.ProductQuery) (models.PagedResult, error)
	// GetProduct returns found=false, and no error, when the product does not exist
	GetProduct(ctx context.Context, id string) (*models.ProductDetail, bool, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// ImageRepositoryInterface defines the contract for downloading product images
type ImageRepositoryInterface interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// CacheStoreInterface defines the contract for the response cache backends.
// Get returns ok=false on a miss or an expired entry.
type CacheStoreInterface interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
