package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"quickcart-emporium/logger"
)

const maxImageBytes = 20 << 20

// ImageRepository downloads product gallery images
type ImageRepository struct {
	client *http.Client
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(timeout time.Duration) *ImageRepository {
	return &ImageRepository{client: &http.Client{Timeout: timeout}}
}

// Ensure ImageRepository implements ImageRepositoryInterface
var _ ImageRepositoryInterface = (*ImageRepository)(nil)

// FetchImage downloads the raw bytes of an image
func (r *ImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &FetchError{Resource: "image", Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Log.Errorf("❌ FetchImage: Request failed for %s: %v", imageURL, err)
		return nil, &FetchError{Resource: "image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Errorf("❌ FetchImage: %s returned status %d", imageURL, resp.StatusCode)
		return nil, &FetchError{Resource: "image", StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &FetchError{Resource: "image", StatusCode: resp.StatusCode, Err: err}
	}
	if len(data) > maxImageBytes {
		return nil, &FetchError{Resource: "image", StatusCode: resp.StatusCode, Err: fmt.Errorf("image exceeds %d bytes", maxImageBytes)}
	}

	logger.Log.Debugf("FetchImage: Downloaded %d bytes from %s", len(data), imageURL)
	return data, nil
}
