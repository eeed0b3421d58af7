package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultCatalogBaseURL = "https://next-ecommerce-api.vercel.app"

// Config holds the runtime settings of the storefront server
type Config struct {
	Env      string
	Port     string
	LogLevel string

	CatalogBaseURL  string
	CatalogTimeout  time.Duration
	CatalogPageSize int

	ListingTTL    time.Duration
	CategoriesTTL time.Duration
	ProductTTL    time.Duration
	// CacheDatabaseURL switches the response cache to Postgres when set
	CacheDatabaseURL string

	ImageCacheDir  string
	RequestTimeout time.Duration
}

// LoadEnvFile loads variables from an env file outside production.
// Values in the file override the process environment. A missing file is
// not an error.
func LoadEnvFile(path string) (bool, error) {
	if os.Getenv("ENV") == "production" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := godotenv.Overload(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("ENV", "development"),
		Port:             strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CatalogBaseURL:   strings.TrimRight(getEnv("CATALOG_API_BASE_URL", DefaultCatalogBaseURL), "/"),
		CacheDatabaseURL: os.Getenv("CACHE_DATABASE_URL"),
		ImageCacheDir:    getEnv("IMAGE_CACHE_DIR", "cache/images"),
	}

	var err error
	if cfg.CatalogPageSize, err = getEnvInt("CATALOG_PAGE_SIZE", 20); err != nil {
		return Config{}, err
	}
	if cfg.CatalogPageSize <= 0 {
		return Config{}, fmt.Errorf("CATALOG_PAGE_SIZE must be greater than 0, got %d", cfg.CatalogPageSize)
	}
	if cfg.CatalogTimeout, err = getEnvDuration("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ListingTTL, err = getEnvDuration("CACHE_LISTING_TTL", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CategoriesTTL, err = getEnvDuration("CACHE_CATEGORIES_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ProductTTL, err = getEnvDuration("CACHE_PRODUCT_TTL", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Addr returns the listen address. 0.0.0.0 is used so the server is
// reachable from outside a container.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("90s", "1h") or a bare number of seconds
func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
