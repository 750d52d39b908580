package checkout

import (
	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/payment"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// SetAddress records the shipping address draft. Allowed at any open step;
// the guard only runs on CompleteShipping.
func SetAddress(s Session, addr shipping.Address) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	s.Address = addr
	return s, nil
}

// SetCourier records the courier choice. Switching courier drops the quoted
// option: a cost quoted for a different courier is never reused.
func SetCourier(s Session, courier string) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	if s.Courier != courier {
		s.Courier = courier
		s.Option = shipping.Option{}
		s.HasQuote = false
	}
	return s, nil
}

// SelectOption records the shipping option chosen from fetched quotes.
func SelectOption(s Session, opt shipping.Option) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	s.Courier = opt.Courier
	s.Option = opt
	s.HasQuote = true
	return s, nil
}

// SelectDiscount records the discount snapshot taken at selection time.
// The selection is advisory; eligibility is re-checked server-side at
// placement.
func SelectDiscount(s Session, d discount.Snapshot) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	s.Discount = d
	return s, nil
}

// CompleteShipping advances Shipping -> Payment. The guard requires every
// mandatory address field plus a courier and a concrete shipping option.
// On failure the returned session equals the input: the transition did not
// occur.
func CompleteShipping(s Session) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	if s.Step != StepShipping {
		return s, ErrWrongStep
	}

	missing := s.Address.MissingFields()
	if s.Courier == "" {
		missing = append(missing, "courier")
	}
	if !s.HasQuote {
		missing = append(missing, "shipping_option")
	}
	if len(missing) > 0 {
		return s, &IncompleteShippingInfoError{Missing: missing}
	}

	s.Step = StepPayment
	return s, nil
}

// CompletePayment advances Payment -> Review once the gateway initiation
// produced a valid transaction token. A failed initiation keeps the session
// at the payment step.
func CompletePayment(s Session, token string, initErr error) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	if s.Step != StepPayment {
		return s, ErrWrongStep
	}
	if initErr != nil || token == "" {
		return s, ErrPaymentInitiationFailed
	}

	s.Token = token
	s.Step = StepReview
	return s, nil
}

// Confirm consumes the gateway confirmation at the review step. Success and
// pending both place the order; error and cancellation keep the session at
// review with its state preserved, so retrying the final step is idempotent.
func Confirm(s Session, result payment.Result) (Session, error) {
	if s.placed {
		// Already placed: repeating the final step is a no-op.
		return s, nil
	}
	if s.abandoned {
		return s, ErrSessionClosed
	}
	if s.Step != StepReview || s.Token == "" {
		return s, ErrWrongStep
	}
	if !result.Confirmed() {
		return s, ErrPaymentNotConfirmed
	}

	s.placed = true
	return s, nil
}

// Back returns to an earlier step. Returning to the shipping step
// invalidates the quoted option, mirroring the courier-change rule: the
// quote must be fetched again before the guard can pass.
func Back(s Session, to Step) (Session, error) {
	if s.Closed() {
		return s, ErrSessionClosed
	}
	if to >= s.Step || to < StepShipping {
		return s, ErrWrongStep
	}
	if to == StepShipping {
		s.Option = shipping.Option{}
		s.HasQuote = false
	}
	s.Step = to
	return s, nil
}

// Abandon closes the session without placing an order.
func Abandon(s Session) (Session, error) {
	if s.placed {
		return s, ErrSessionClosed
	}
	s.abandoned = true
	return s, nil
}
