package router

import (
	"net/http"
	"strings"

	"quickcart-emporium/app/controller"
)

type Controllers struct {
	Catalog *controller.CatalogController
	Product *controller.ProductController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every storefront route on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Product listing
	mux.HandleFunc("/api/products", controllers.Catalog.ListProducts)

	// Categories for the filter bar
	mux.HandleFunc("/api/categories", controllers.Catalog.ListCategories)

	// Product detail and gallery images
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/")
		parts := strings.Split(path, "/")

		switch {
		case len(parts) == 1 && parts[0] != "":
			// GET /api/products/:id
			controllers.Product.GetProduct(w, r, parts[0])
		case len(parts) == 3 && parts[0] != "" && parts[1] == "images":
			// GET /api/products/:id/images/:index
			controllers.Product.GetProductImage(w, r, parts[0], parts[2])
		default:
			http.Error(w, "Not found", http.StatusNotFound)
		}
	})
}
