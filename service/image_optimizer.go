package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"quickcart-emporium/logger"
	"quickcart-emporium/repository"
)

const (
	ImageSizeThumb  = "thumb"
	ImageSizeMedium = "medium"

	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

var (
	// ErrImageNotFound is returned when the product or the gallery index does not exist
	ErrImageNotFound = errors.New("image not found")
	// ErrImageUndecodable is returned when the catalog serves bytes that are
	// not a JPEG, PNG or WebP image
	ErrImageUndecodable = errors.New("image format not supported")
)

// OptimizeImage converts an image to JPEG, shrinking it so its longest side
// fits the size bucket ("thumb" or "medium"). Images already small enough
// are only re-encoded.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v: %w", err, ErrImageUndecodable)
	}

	logger.Log.Debugf("OptimizeImage: Decoded format=%s bounds=%v", format, img.Bounds())

	var maxDim, quality int
	switch size {
	case ImageSizeThumb:
		maxDim = maxSizeThumb
		quality = qualityThumb
	case ImageSizeMedium:
		maxDim = maxSizeMedium
		quality = qualityMedium
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
		logger.Log.Warnf("⚠️  OptimizeImage: Unknown size '%s', defaulting to medium", size)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var resized image.Image = img
	if width > maxDim || height > maxDim {
		// imaging keeps the aspect ratio when one dimension is 0
		if width >= height {
			resized = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
		} else {
			resized = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
		}
		logger.Log.Debugf("OptimizeImage: Resized %dx%d -> %dx%d", width, height, resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// ImageService serves optimized product gallery images, keeping a copy of
// every optimized image on disk
type ImageService struct {
	catalog  repository.CatalogRepositoryInterface
	images   repository.ImageRepositoryInterface
	cacheDir string
}

// NewImageService creates a new ImageService. An empty cacheDir disables the disk cache.
func NewImageService(catalog repository.CatalogRepositoryInterface, images repository.ImageRepositoryInterface, cacheDir string) *ImageService {
	return &ImageService{
		catalog:  catalog,
		images:   images,
		cacheDir: cacheDir,
	}
}

// ProductImage returns the optimized JPEG for a product's gallery image.
// Index 0 is the first image; a product without images falls back to its
// thumbnail.
func (s *ImageService) ProductImage(ctx context.Context, productID string, index int, size string) ([]byte, error) {
	if size != ImageSizeThumb {
		size = ImageSizeMedium
	}

	product, found, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("product %s: %w", productID, ErrImageNotFound)
	}

	gallery := product.Images
	if len(gallery) == 0 && product.Thumbnail != "" {
		gallery = []string{product.Thumbnail}
	}
	if index < 0 || index >= len(gallery) {
		return nil, fmt.Errorf("product %s image %d: %w", productID, index, ErrImageNotFound)
	}
	source := gallery[index]

	cachePath := s.cachePath(source, size)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			logger.Log.Debugf("ProductImage: Serving cached image %s", cachePath)
			return data, nil
		}
	}

	raw, err := s.images.FetchImage(ctx, source)
	if err != nil {
		return nil, err
	}
	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := saveToCache(cachePath, optimized); err != nil {
			logger.Log.Warnf("⚠️  ProductImage: %v", err)
		}
	}

	logger.Log.Infof("✓ ProductImage: Optimized product=%s index=%d size=%s (%d -> %d bytes)",
		productID, index, size, len(raw), len(optimized))
	return optimized, nil
}

// cachePath derives the cache file from the source URL so that products
// sharing an image share the file
func (s *ImageService) cachePath(source, size string) string {
	if strings.TrimSpace(s.cacheDir) == "" {
		return ""
	}
	sum := sha1.Sum([]byte(source))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_%s.jpg", hex.EncodeToString(sum[:]), size))
}

func saveToCache(cachePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
