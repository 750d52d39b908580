package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/cart"
	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// Step is the current checkout step.
type Step int

const (
	StepShipping Step = 1
	StepPayment  Step = 2
	StepReview   Step = 3
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Session is the ephemeral client-held checkout state. It is a plain value:
// every transition takes a Session and returns an updated copy or a tagged
// error, leaving the input untouched. It is created when checkout begins and
// discarded on placement or abandonment.
type Session struct {
	Step Step

	Cart     cart.Snapshot
	Address  shipping.Address
	Courier  string
	Option   shipping.Option
	HasQuote bool
	Discount discount.Snapshot
	Token    string

	placed    bool
	abandoned bool
}

// Begin resolves the cart and opens a session at the shipping step.
// An empty cart refuses to open a session at all.
func Begin(items []cart.LineItem) (Session, error) {
	snap, err := cart.Resolve(items)
	if err != nil {
		return Session{}, err
	}
	return Session{Step: StepShipping, Cart: snap}, nil
}

// Placed reports whether the session reached the terminal placed state.
func (s Session) Placed() bool { return s.placed }

// Abandoned reports whether the session was abandoned.
func (s Session) Abandoned() bool { return s.abandoned }

// Closed reports whether the session reached any terminal state.
func (s Session) Closed() bool { return s.placed || s.abandoned }

// ShippingCost is the cost of the selected option, or zero before one is
// selected. A zero cost is only valid transiently before the shipping guard
// passes.
func (s Session) ShippingCost() decimal.Decimal {
	if !s.HasQuote {
		return decimal.Zero
	}
	return s.Option.Cost
}

// Total computes the live display total:
// max(0, subtotal - discount + shipping). The same formula runs again
// authoritatively server-side at placement; that value wins.
func (s Session) Total() decimal.Decimal {
	return Total(s.Cart.Subtotal, s.Discount, s.ShippingCost())
}

// Total combines a subtotal, a discount snapshot, and a shipping cost into
// the payable amount, clamped at zero.
func Total(subtotal decimal.Decimal, d discount.Snapshot, shippingCost decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(d.AmountFor(subtotal)).Add(shippingCost)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
