package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/widyatama/vesti-checkout/internal/domain/cart"
	"github.com/widyatama/vesti-checkout/internal/domain/checkout"
	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/order"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// writeJSON writes a JSON response body built by fn.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the standard error body {"code","message"} with optional
// extra fields appended by extra.
func writeError(w http.ResponseWriter, status int, message string, extra func(e *jx.Encoder)) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
			if extra != nil {
				extra(e)
			}
		})
	})
}

// respondError maps domain errors to HTTP responses. Unknown errors are
// logged and answered with a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, shipping.ErrDestinationNotSelected),
		errors.Is(err, shipping.ErrCourierNotSelected):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return

	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return

	case errors.Is(err, checkout.ErrWrongStep),
		errors.Is(err, order.ErrOrderClosed),
		errors.Is(err, checkout.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error(), nil)
		return

	case errors.Is(err, checkout.ErrPaymentNotConfirmed):
		writeError(w, http.StatusPaymentRequired, err.Error(), nil)
		return

	case errors.Is(err, discount.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, "unknown discount code", nil)
		return

	case errors.Is(err, order.ErrDiscountNotEligible):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return

	case errors.Is(err, shipping.ErrUnknownOption),
		errors.Is(err, shipping.ErrNegativeCost):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return

	case errors.Is(err, checkout.ErrPaymentInitiationFailed):
		writeError(w, http.StatusBadGateway, err.Error(), nil)
		return
	}

	var incomplete *checkout.IncompleteShippingInfoError
	if errors.As(err, &incomplete) {
		writeError(w, http.StatusUnprocessableEntity, incomplete.Error(), func(e *jx.Encoder) {
			e.Field("missing", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, f := range incomplete.Missing {
						e.Str(f)
					}
				})
			})
		})
		return
	}

	var invalidQty *cart.InvalidQuantityError
	if errors.As(err, &invalidQty) {
		writeError(w, http.StatusUnprocessableEntity, invalidQty.Error(), nil)
		return
	}

	var invalidValue *discount.InvalidValueError
	if errors.As(err, &invalidValue) {
		writeError(w, http.StatusUnprocessableEntity, invalidValue.Error(), nil)
		return
	}

	var quote *shipping.QuoteUnavailableError
	if errors.As(err, &quote) {
		writeError(w, http.StatusBadGateway, quote.Error(), nil)
		return
	}

	zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error", nil)
}
