package handler

import (
	"net/http"

	"github.com/DipamJha/foodPro/internal/domain/product"
	"github.com/DipamJha/foodPro/internal/domain/scan"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 16 << 10

// Handler serves the scan session API, delegating state to the session
// registry and stateless lookups to the product fetcher.
type Handler struct {
	sessions scan.Registry
	products product.Fetcher
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(sessions scan.Registry, products product.Fetcher) *Handler {
	return &Handler{
		sessions: sessions,
		products: products,
	}
}

// Register mounts the API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.MountSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.UnmountSession)
	mux.HandleFunc("POST /api/sessions/{id}/scan", h.Scan)
	mux.HandleFunc("POST /api/sessions/{id}/analyze", h.Analyze)
	mux.HandleFunc("GET /api/products/{barcode}", h.GetProduct)
}
