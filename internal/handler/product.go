package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DipamJha/foodPro/internal/domain/product"
	"github.com/DipamJha/foodPro/internal/domain/scan"
)

// GetProduct performs a single lookup without a session. Failures are mapped
// to status codes and carry the same message the result panel would show.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")

	rec, err := h.products.Lookup(r.Context(), barcode)
	if err == nil {
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
			encodeProduct(e, rec)
		})
		return
	}

	if !errors.Is(err, product.ErrNotFound) {
		zctx.From(r.Context()).Warn("Product fetch failed",
			zap.String("barcode", barcode),
			zap.Stringer("reason", product.ReasonOf(err)),
			zap.Error(err),
		)
	}
	writeError(w, lookupStatus(err), scan.ErrorMessage(err))
}

func lookupStatus(err error) int {
	switch product.OutcomeOf(err) {
	case product.OutcomeNotFound:
		return http.StatusNotFound
	case product.OutcomeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
