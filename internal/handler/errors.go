package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/anomie-storefront/internal/domain/product"
	"github.com/xenking/anomie-storefront/internal/session"
	"github.com/xenking/anomie-storefront/pkg/httpmiddleware"
)

// mapError converts domain errors to an HTTP status and client message.
// Unrecognized errors become a 500 with a generic message.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, session.ErrCapacity):
		return http.StatusServiceUnavailable, "storefront is busy, try again later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := mapError(err)
	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "60")
	}
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}
	httpmiddleware.WriteError(w, code, msg)
}
