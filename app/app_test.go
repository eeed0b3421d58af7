package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart-emporium/config"
	"quickcart-emporium/models"
)

type catalogAPI struct {
	server        *httptest.Server
	productsCalls atomic.Int32
}

func newCatalogAPI(t *testing.T) *catalogAPI {
	t.Helper()
	api := &catalogAPI{}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1000, 500))))
	picture := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		api.productsCalls.Add(1)
		fmt.Fprint(w, `{"products":[{"id":"001","title":"Lamp","price":10}],"total":1}`)
	})
	mux.HandleFunc("/products/001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"001","title":"Lamp","price":10,"stock":3,"images":["%s/img/lamp.png"],
			"reviews":[{"reviewerName":"a","rating":1,"date":"2024-01-01"},{"reviewerName":"b","rating":4,"date":"2024-02-01"}]}`,
			api.server.URL)
	})
	mux.HandleFunc("/products/404", http.NotFound)
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"slug":"lighting","name":"Lighting"}]`)
	})
	mux.HandleFunc("/img/lamp.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(picture)
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func newHandler(t *testing.T, api *catalogAPI) http.Handler {
	t.Helper()
	cfg := config.Config{
		CatalogBaseURL:  api.server.URL,
		CatalogTimeout:  2 * time.Second,
		CatalogPageSize: 20,
		ListingTTL:      time.Minute,
		CategoriesTTL:   time.Hour,
		ProductTTL:      time.Minute,
		ImageCacheDir:   t.TempDir(),
		RequestTimeout:  5 * time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	handler, err := Initialize(ctx, cfg)
	require.NoError(t, err)
	return handler
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStorefrontRoutes(t *testing.T) {
	api := newCatalogAPI(t)
	h := newHandler(t, api)

	t.Run("ping", func(t *testing.T) {
		rec := get(t, h, "/ping")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("listing is cached", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := get(t, h, "/api/products?page=1")
			require.Equal(t, http.StatusOK, rec.Code)

			var body models.ProductListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Items, 1)
			assert.Equal(t, "Lamp", body.Items[0].Title)
			assert.Equal(t, []string{"lighting"}, body.Categories)
		}
		assert.Equal(t, int32(1), api.productsCalls.Load())
	})

	t.Run("detail", func(t *testing.T) {
		rec := get(t, h, "/api/products/001?reviewSort=rating")
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.ProductDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "$10.00", body.FormattedPrice)
		assert.True(t, body.InStock)
		assert.Equal(t, "b", body.Reviews[0].ReviewerName)
	})

	t.Run("missing product", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/api/products/404").Code)
	})

	t.Run("gallery image", func(t *testing.T) {
		rec := get(t, h, "/api/products/001/images/0?size=thumb")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

		img, _, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 300, img.Bounds().Dx())
	})

	t.Run("unknown subroute", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/api/products/001/reviews").Code)
	})
}

func TestStorefrontUpstreamDown(t *testing.T) {
	api := newCatalogAPI(t)
	h := newHandler(t, api)
	api.server.Close()

	rec := get(t, h, "/api/categories")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch categories"}`, rec.Body.String())
}
