package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage reduces the subtotal by a percentage in [0,100].
	TypePercentage Type = "percentage"
	// TypeFixed reduces the subtotal by a fixed amount, capped at the subtotal.
	TypeFixed Type = "fixed"
)

// Status enumerates the lifecycle states of a discount record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ErrNotFound is returned when no discount matches the given code or id.
var ErrNotFound = errors.New("discount not found")

// InvalidValueError indicates a discount value outside its allowed range.
// Registry-sourced values get the same check as user input: the range is
// re-validated at consumption time, not only in the admin form.
type InvalidValueError struct {
	Code  string
	Value decimal.Decimal
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid discount value %s for code %s", e.Value, e.Code)
}

// Discount is a registry record. It is mutable on the admin side, so
// checkout never holds one directly; it takes a Snapshot at selection time.
type Discount struct {
	ID        string
	Code      string
	Type      Type
	Value     decimal.Decimal
	Status    Status
	StartDate time.Time
	EndDate   time.Time
}

// Eligible reports whether the discount may be applied at the given time:
// status active and now within [StartDate, EndDate].
func (d Discount) Eligible(now time.Time) bool {
	if d.Status != StatusActive {
		return false
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return false
	}
	return true
}

// Registry provides lookup of discount records.
type Registry interface {
	FindByCode(ctx context.Context, code string) (*Discount, error)
	FindByID(ctx context.Context, id string) (*Discount, error)
}
