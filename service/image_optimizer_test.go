package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart-emporium/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds()
}

func TestOptimizeImage(t *testing.T) {
	src := pngBytes(t, 1200, 600)

	thumb, err := OptimizeImage(src, ImageSizeThumb)
	require.NoError(t, err)
	b := jpegBounds(t, thumb)
	assert.Equal(t, 300, b.Dx())
	assert.Equal(t, 150, b.Dy())

	medium, err := OptimizeImage(src, "poster")
	require.NoError(t, err)
	assert.Equal(t, 800, jpegBounds(t, medium).Dx())
}

func TestOptimizeImageKeepsSmallImages(t *testing.T) {
	out, err := OptimizeImage(pngBytes(t, 120, 200), ImageSizeThumb)
	require.NoError(t, err)
	b := jpegBounds(t, out)
	assert.Equal(t, 120, b.Dx())
	assert.Equal(t, 200, b.Dy())
}

func TestOptimizeImageRejectsGarbage(t *testing.T) {
	_, err := OptimizeImage([]byte("not an image"), ImageSizeThumb)
	assert.ErrorIs(t, err, ErrImageUndecodable)
}

func TestWebPDecoderRegistered(t *testing.T) {
	// A truncated WebP header reaches the WebP decoder instead of failing format sniffing
	_, _, err := image.Decode(bytes.NewReader([]byte("RIFF\x10\x00\x00\x00WEBPVP8L")))
	require.Error(t, err)
	assert.NotErrorIs(t, err, image.ErrFormat)
}

type fakeImages struct {
	data    map[string][]byte
	fetches int
}

func (f *fakeImages) FetchImage(ctx context.Context, url string) ([]byte, error) {
	f.fetches++
	return f.data[url], nil
}

type singleProductCatalog struct {
	countingCatalog
	product *models.ProductDetail
}

func (c *singleProductCatalog) GetProduct(ctx context.Context, id string) (*models.ProductDetail, bool, error) {
	if c.product == nil || c.product.ID != id {
		return nil, false, nil
	}
	return c.product, true, nil
}

func TestImageServiceProductImage(t *testing.T) {
	images := &fakeImages{data: map[string][]byte{
		"https://cdn.test/1.png": pngBytes(t, 900, 900),
		"https://cdn.test/t.png": pngBytes(t, 100, 100),
	}}
	catalog := &singleProductCatalog{product: &models.ProductDetail{
		ProductSummary: models.ProductSummary{ID: "1", Images: []string{"https://cdn.test/1.png"}},
	}}
	svc := NewImageService(catalog, images, t.TempDir())
	ctx := context.Background()

	first, err := svc.ProductImage(ctx, "1", 0, ImageSizeThumb)
	require.NoError(t, err)
	assert.Equal(t, 300, jpegBounds(t, first).Dx())

	second, err := svc.ProductImage(ctx, "1", 0, ImageSizeThumb)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, images.fetches, "second call is served from the disk cache")

	_, err = svc.ProductImage(ctx, "1", 1, ImageSizeThumb)
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = svc.ProductImage(ctx, "2", 0, ImageSizeThumb)
	assert.ErrorIs(t, err, ErrImageNotFound)

	catalog.product = &models.ProductDetail{
		ProductSummary: models.ProductSummary{ID: "3", Thumbnail: "https://cdn.test/t.png"},
	}
	out, err := svc.ProductImage(ctx, "3", 0, ImageSizeMedium)
	require.NoError(t, err)
	assert.Equal(t, 100, jpegBounds(t, out).Dx())
}
