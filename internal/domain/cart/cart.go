package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when checkout is attempted with no line items.
// Checkout must not proceed with zero items; the caller returns to the cart.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidQuantityError indicates a line item has a quantity below one.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// LineItem is one product entry in the cart. UnitPrice is in the smallest
// currency unit (IDR has no subunit, so whole rupiah). UnitWeight is grams.
type LineItem struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	UnitWeight int
}

// Snapshot is the resolved view of a cart at a point in time: the subtotal,
// the shipment weight used for rate lookups, and the total item count.
type Snapshot struct {
	Subtotal    decimal.Decimal
	TotalWeight int
	ItemCount   int
}

// Resolve computes the cart snapshot for the given line items.
// It is a pure function: no side effects, no partial results.
// Returns ErrEmptyCart when items is empty and InvalidQuantityError when
// any line has a quantity below one.
func Resolve(items []LineItem) (Snapshot, error) {
	if len(items) == 0 {
		return Snapshot{}, ErrEmptyCart
	}

	subtotal := decimal.Zero
	weight := 0
	count := 0
	for _, item := range items {
		if item.Quantity < 1 {
			return Snapshot{}, &InvalidQuantityError{ProductID: item.ProductID}
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		weight += item.UnitWeight * item.Quantity
		count += item.Quantity
	}

	return Snapshot{
		Subtotal:    subtotal,
		TotalWeight: weight,
		ItemCount:   count,
	}, nil
}
