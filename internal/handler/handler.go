// Package handler exposes the checkout workflow over HTTP. Handlers decode
// requests with jx, delegate to the order service, and map domain errors to
// status codes in respond.go.
package handler

import (
	"net/http"

	"github.com/widyatama/vesti-checkout/internal/domain/order"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// Handler serves the checkout API, delegating business logic to the order
// service and destination lookups to the lookup client.
type Handler struct {
	orders *order.Service
	lookup shipping.Lookup
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(orders *order.Service, lookup shipping.Lookup) *Handler {
	return &Handler{
		orders: orders,
		lookup: lookup,
	}
}

// Register mounts all API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/destinations", h.SearchDestinations)
	mux.HandleFunc("POST /api/checkout", h.CreateCheckout)
	mux.HandleFunc("GET /api/checkout/{id}", h.GetCheckout)
	mux.HandleFunc("POST /api/checkout/{id}/quotes", h.QuoteShipping)
	mux.HandleFunc("PUT /api/checkout/{id}/shipping", h.UpdateShipping)
	mux.HandleFunc("POST /api/checkout/{id}/payment", h.InitiatePayment)
	mux.HandleFunc("POST /api/checkout/{id}/place", h.PlaceOrder)
	mux.HandleFunc("DELETE /api/checkout/{id}", h.CancelCheckout)
}
