package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the outcome of a payment confirmation. The gateway's callback
// style (success/pending/error/cancel handlers) is flattened into this
// result type so the checkout workflow can consume it synchronously.
type Status string

const (
	// StatusSuccess means the payment settled.
	StatusSuccess Status = "success"
	// StatusPending means the payment is awaiting settlement (e.g. bank
	// transfer). Pending still advances the order.
	StatusPending Status = "pending"
	// StatusError means the gateway reported a failure.
	StatusError Status = "error"
	// StatusCancel means the user closed or cancelled the payment flow.
	StatusCancel Status = "cancel"
)

// Result is the confirmation outcome for a transaction token.
type Result struct {
	Token   string
	Status  Status
	Message string
}

// Confirmed reports whether the result advances the order: settled and
// pending both count, explicit error or cancellation do not.
func (r Result) Confirmed() bool {
	return r.Status == StatusSuccess || r.Status == StatusPending
}

// ErrInitiationFailed is returned when the gateway could not open a payment
// session for the order.
var ErrInitiationFailed = errors.New("payment initiation failed")

// Gateway is the external payment collaborator.
type Gateway interface {
	// Initiate opens a payment session for the given order and amount and
	// returns the transaction token.
	Initiate(ctx context.Context, orderID string, amount decimal.Decimal) (token string, err error)
	// Confirm reports the current outcome for a previously issued token.
	Confirm(ctx context.Context, token string) (Result, error)
}
