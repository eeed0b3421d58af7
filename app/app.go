package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quickcart-emporium/app/controller"
	"quickcart-emporium/app/middleware"
	"quickcart-emporium/app/router"
	"quickcart-emporium/config"
	"quickcart-emporium/db"
	"quickcart-emporium/logger"
	"quickcart-emporium/repository"
	"quickcart-emporium/service"
)

// Initialize wires the catalog client, cache and controllers and returns the
// root HTTP handler
func Initialize(ctx context.Context, cfg config.Config) (http.Handler, error) {
	store, err := newCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	imageRepo := repository.NewImageRepository(cfg.CatalogTimeout)

	// Read-through cache in front of the catalog
	catalog := service.NewCatalogService(catalogRepo, store, service.CacheTTLs{
		Listing:    cfg.ListingTTL,
		Categories: cfg.CategoriesTTL,
		Product:    cfg.ProductTTL,
	})
	imageService := service.NewImageService(catalog, imageRepo, cfg.ImageCacheDir)

	// Create controllers
	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(catalog, cfg.CatalogPageSize),
		Product: controller.NewProductController(catalog, imageService),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)

	handler := middleware.Chain(mux,
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	logger.Log.Infof("✓ Storefront initialized against catalog %s", cfg.CatalogBaseURL)
	return handler, nil
}

// cacheSweepInterval is how often expired in-memory entries are dropped
const cacheSweepInterval = time.Minute

// newCacheStore picks Postgres when CACHE_DATABASE_URL is set and memory
// otherwise. The memory store is swept until ctx is done.
func newCacheStore(ctx context.Context, cfg config.Config) (repository.CacheStoreInterface, error) {
	if cfg.CacheDatabaseURL == "" {
		store := repository.NewMemoryCacheStore()
		go store.Sweep(ctx, cacheSweepInterval)
		logger.Log.Infof("📦 Using in-memory response cache")
		return store, nil
	}

	if err := db.InitDB(ctx, cfg.CacheDatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	store := repository.NewPostgresCacheStore(db.DB)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if _, err := store.PurgeExpired(ctx); err != nil {
		logger.Log.Warnf("⚠️  Could not purge expired cache entries: %v", err)
	}
	logger.Log.Infof("📦 Using Postgres response cache")
	return store, nil
}
