package checkout

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrSessionClosed is returned by any transition on a placed or
	// abandoned session.
	ErrSessionClosed = errors.New("checkout session is closed")
	// ErrWrongStep is returned when a transition is attempted from a step
	// it does not apply to.
	ErrWrongStep = errors.New("transition not valid for current step")
	// ErrPaymentInitiationFailed is returned when the gateway did not hand
	// back a usable transaction token. The session stays at the payment step.
	ErrPaymentInitiationFailed = errors.New("payment initiation failed")
	// ErrPaymentNotConfirmed is returned when the gateway reported an error
	// or the user cancelled. The session stays at review; retrying the final
	// step is safe.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)

// IncompleteShippingInfoError lists what is still missing before the
// shipping step can complete: address fields, the courier, or the selected
// shipping option.
type IncompleteShippingInfoError struct {
	Missing []string
}

func (e *IncompleteShippingInfoError) Error() string {
	return fmt.Sprintf("incomplete shipping info: missing %s", strings.Join(e.Missing, ", "))
}
