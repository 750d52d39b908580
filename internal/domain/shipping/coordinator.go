package shipping

import (
	"context"
	"slices"
	"sync"
)

// Coordinator tracks the quote state for one checkout: the resolved
// destination, the chosen courier, the fetched options, and the selection.
//
// Any input change (destination or courier) invalidates previously fetched
// options and the selection, and bumps a sequence number so that responses
// from in-flight requests for the old inputs are discarded instead of being
// applied on top of the new state.
type Coordinator struct {
	client RateClient

	mu          sync.Mutex
	seq         uint64
	destination Destination
	courier     string
	options     []Option
	selected    *Option
}

// NewCoordinator creates a Coordinator backed by the given rate client.
func NewCoordinator(client RateClient) *Coordinator {
	return &Coordinator{client: client}
}

// SetDestination records the concrete destination picked from lookup
// results. Changing it invalidates fetched options and the selection.
func (c *Coordinator) SetDestination(dest Destination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destination.ID == dest.ID {
		c.destination = dest
		return
	}
	c.destination = dest
	c.invalidateLocked()
}

// SetCourier records the courier choice. Switching courier invalidates the
// fetched options and the selection; quotes for a different courier are
// never reused.
func (c *Coordinator) SetCourier(courier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.courier == courier {
		return
	}
	c.courier = courier
	c.invalidateLocked()
}

// Invalidate clears fetched options and the selection, e.g. when the user
// returns to the shipping step after a cost was already quoted. The
// destination and courier choices are kept.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Coordinator) invalidateLocked() {
	c.seq++
	c.options = nil
	c.selected = nil
}

// FetchOptions requests shipping options for the current destination and
// courier. It refuses to issue a request until a concrete destination and a
// courier are set. Rate API failures are wrapped in QuoteUnavailableError;
// the destination selection survives so the caller can retry. A response
// that arrives after the inputs changed is dropped with ErrStaleQuote.
func (c *Coordinator) FetchOptions(ctx context.Context, weightGrams int) ([]Option, error) {
	c.mu.Lock()
	dest := c.destination
	courier := c.courier
	seq := c.seq
	c.mu.Unlock()

	if !dest.Resolved() {
		return nil, ErrDestinationNotSelected
	}
	if courier == "" {
		return nil, ErrCourierNotSelected
	}

	opts, err := c.client.FetchOptions(ctx, dest.ID, weightGrams, courier)
	if err != nil {
		return nil, &QuoteUnavailableError{Courier: courier, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != seq {
		return nil, ErrStaleQuote
	}
	c.options = opts
	return opts, nil
}

// Select marks one of the fetched options as chosen. This is a local
// operation, no network call: the cost only takes effect on the order once
// the shipping step is persisted.
func (c *Coordinator) Select(courier, service string) (Option, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, opt := range c.options {
		if opt.Courier == courier && opt.Service == service {
			chosen := opt
			c.selected = &chosen
			return chosen, nil
		}
	}
	return Option{}, ErrUnknownOption
}

// Selected returns the currently selected option, if any.
func (c *Coordinator) Selected() (Option, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return Option{}, false
	}
	return *c.selected, true
}

// Options returns a copy of the most recently fetched options. Mutating the
// returned slice does not affect the coordinator state.
func (c *Coordinator) Options() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.options)
}

// Destination returns the currently set destination.
func (c *Coordinator) Destination() Destination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destination
}
