package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// Status enumerates order lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ErrNotFound is returned when no order matches the given id.
var ErrNotFound = errors.New("order not found")

// ErrOrderClosed is returned for mutations on a completed or cancelled order.
var ErrOrderClosed = errors.New("order is closed")

// Item is a line item frozen into the order at creation time. Prices and
// weights are snapshots, not live product references.
type Item struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	UnitWeight int
}

// Totals holds the computed money amounts for an order.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
}

// Order is the durable checkout record. The discount is a snapshot of
// type/value taken at selection, never a live pointer into the registry;
// the shipping option is immutable once persisted.
type Order struct {
	ID             string
	Items          []Item
	Address        shipping.Address
	ShippingOption *shipping.Option
	Discount       *discount.Snapshot
	Totals         Totals
	PaymentToken   string
	Status         Status
	CreatedAt      time.Time
}

// Repository defines persistence operations for orders. Each method maps to
// one step-completion call; the server-side total computation is stateless
// and keyed purely by the order's persisted data.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateShipping(ctx context.Context, id string, addr shipping.Address, opt shipping.Option, totals Totals) error
	UpdatePayment(ctx context.Context, id string, d *discount.Snapshot, token string, totals Totals) error
	SetStatus(ctx context.Context, id string, status Status, totals Totals) error
}
