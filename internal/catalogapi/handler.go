// Package catalogapi serves the product listing that the storefront loads
// its catalog from.
package catalogapi

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/anomie-storefront/internal/catalog"
	"github.com/xenking/anomie-storefront/internal/domain/product"
	"github.com/xenking/anomie-storefront/pkg/httpmiddleware"
)

// Handler serves GET /api/products from a product repository.
type Handler struct {
	products product.Repository
}

// NewHandler returns a Handler backed by products.
func NewHandler(products product.Repository) *Handler {
	return &Handler{products: products}
}

// Register adds the listing route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+catalog.ProductsPath, h.ListProducts)
}

// ListProducts writes every product in display order. An empty catalog is
// an empty array, not an error.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("List products", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	catalog.EncodeProducts(e, products)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Bytes())
}
