package shipping

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Destination is a concrete location selected from lookup results. Free-text
// search input never reaches the rate API; only resolved destinations with a
// non-empty ID do.
type Destination struct {
	ID          string
	Subdistrict string
	District    string
	City        string
	Province    string
	PostalCode  string
}

// Resolved reports whether the destination was actually picked from lookup
// results rather than typed as free text.
func (d Destination) Resolved() bool {
	return d.ID != ""
}

// Address is the recipient address collected during the shipping step.
type Address struct {
	FullName    string
	Address     string
	Subdistrict string
	District    string
	City        string
	Province    string
	PostalCode  string
	Phone       string
}

// MissingFields returns the names of required fields that are still empty.
// District is informational and not required.
func (a Address) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"full_name", a.FullName},
		{"address", a.Address},
		{"subdistrict", a.Subdistrict},
		{"city", a.City},
		{"province", a.Province},
		{"postal_code", a.PostalCode},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Option is a single shipping service quoted by the rate API. Cost is in the
// smallest currency unit. Options are immutable once selected for an order.
type Option struct {
	Courier string
	Service string
	Name    string
	Cost    decimal.Decimal
	ETA     string
}

// RateClient quotes shipping options from the external rate API.
type RateClient interface {
	FetchOptions(ctx context.Context, destinationID string, weightGrams int, courier string) ([]Option, error)
}

// Lookup resolves free-text queries to concrete destinations.
type Lookup interface {
	Search(ctx context.Context, query string) ([]Destination, error)
}

// Coordinator-level sentinel errors.
var (
	// ErrDestinationNotSelected means the user has only typed a search string
	// and not picked a concrete destination yet; no rate request is issued.
	ErrDestinationNotSelected = errors.New("destination not selected")
	// ErrCourierNotSelected means no courier was chosen for the quote request.
	ErrCourierNotSelected = errors.New("courier not selected")
	// ErrStaleQuote means the inputs changed while a quote request was in
	// flight; the response is discarded.
	ErrStaleQuote = errors.New("quote inputs changed during fetch")
	// ErrUnknownOption means a selection does not match any fetched option.
	ErrUnknownOption = errors.New("shipping option not in fetched quotes")
	// ErrNegativeCost means a submitted option carries a cost below zero.
	// Rate API quotes are never negative; such input is rejected outright.
	ErrNegativeCost = errors.New("shipping cost cannot be negative")
)

// QuoteUnavailableError wraps a rate API failure. The shipping step cannot
// advance while this persists; the destination selection is kept so the
// caller can retry.
type QuoteUnavailableError struct {
	Courier string
	Err     error
}

func (e *QuoteUnavailableError) Error() string {
	return fmt.Sprintf("shipping quote unavailable for courier %s: %v", e.Courier, e.Err)
}

func (e *QuoteUnavailableError) Unwrap() error { return e.Err }
