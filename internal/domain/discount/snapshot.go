package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is the discount as frozen at selection time. Later changes to the
// registry record do not affect it; eligibility is re-checked against the
// registry only at the trust boundary (order placement).
type Snapshot struct {
	DiscountID string
	Code       string
	Type       Type
	Value      decimal.Decimal
}

// NewSnapshot freezes a discount for use in a checkout session.
// The value range is validated here regardless of where the record came
// from: percentages must be in [0,100], fixed amounts must be non-negative.
func NewSnapshot(d Discount) (Snapshot, error) {
	switch d.Type {
	case TypePercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return Snapshot{}, &InvalidValueError{Code: d.Code, Value: d.Value}
		}
	case TypeFixed:
		if d.Value.IsNegative() {
			return Snapshot{}, &InvalidValueError{Code: d.Code, Value: d.Value}
		}
	default:
		return Snapshot{}, &InvalidValueError{Code: d.Code, Value: d.Value}
	}

	return Snapshot{
		DiscountID: d.ID,
		Code:       d.Code,
		Type:       d.Type,
		Value:      d.Value,
	}, nil
}

// IsZero reports whether no discount was selected.
func (s Snapshot) IsZero() bool {
	return s.DiscountID == "" && s.Code == ""
}

// AmountFor computes the discount amount for the given subtotal.
// Percentage: subtotal * value / 100. Fixed: min(value, subtotal).
// The result is always within [0, subtotal].
func (s Snapshot) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	if s.IsZero() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch s.Type {
	case TypePercentage:
		amount = subtotal.Mul(s.Value).Div(hundred)
	case TypeFixed:
		amount = decimal.Min(s.Value, subtotal)
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount.Round(0)
}

// Revalidate returns the snapshot that should actually count toward the
// authoritative total: the original snapshot when the registry record is
// still eligible at now, or the zero Snapshot otherwise. An expired or
// deactivated discount selected earlier contributes nothing; the client
// selection is advisory only.
func (s Snapshot) Revalidate(d *Discount, now time.Time) Snapshot {
	if s.IsZero() {
		return Snapshot{}
	}
	if d == nil || !d.Eligible(now) {
		return Snapshot{}
	}
	return s
}
