package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/cart"
	"github.com/widyatama/vesti-checkout/internal/domain/checkout"
	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/payment"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

// ErrDiscountNotEligible is returned when a discount code is selected
// outside its validity window or while inactive.
var ErrDiscountNotEligible = errors.New("discount not eligible")

// Service drives the checkout workflow over persisted orders. All guards go
// through the checkout transition functions; the service reconstructs a
// session from the order's persisted data, applies the transition, and
// persists the outcome. It holds no per-order state, so computations for
// different orders can run concurrently.
type Service struct {
	orders    Repository
	discounts discount.Registry
	gateway   payment.Gateway
	rates     shipping.RateClient
	now       func() time.Time
}

// NewService creates a Service with the required collaborators.
func NewService(
	orders Repository,
	discounts discount.Registry,
	gateway payment.Gateway,
	rates shipping.RateClient,
) *Service {
	return &Service{
		orders:    orders,
		discounts: discounts,
		gateway:   gateway,
		rates:     rates,
		now:       time.Now,
	}
}

// CreateCheckout snapshots the cart into a pending order. The prices and
// weights on the order no longer follow the product catalog.
func (s *Service) CreateCheckout(ctx context.Context, items []cart.LineItem) (*Order, error) {
	snap, err := cart.Resolve(items)
	if err != nil {
		return nil, err
	}

	orderItems := make([]Item, len(items))
	for i, item := range items {
		orderItems[i] = Item{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			UnitWeight: item.UnitWeight,
		}
	}

	o := &Order{
		ID:    uuid.New().String(),
		Items: orderItems,
		Totals: Totals{
			Subtotal: snap.Subtotal,
			Total:    snap.Subtotal,
		},
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns the order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// Quotes fetches shipping options for the order's shipment weight. The
// destination must be concrete; free-text input never produces a rate call.
func (s *Service) Quotes(ctx context.Context, orderID string, dest shipping.Destination, courier string) ([]shipping.Option, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	snap, err := cart.Resolve(cartItems(o))
	if err != nil {
		return nil, err
	}

	c := shipping.NewCoordinator(s.rates)
	c.SetDestination(dest)
	c.SetCourier(courier)
	return c.FetchOptions(ctx, snap.TotalWeight)
}

// UpdateShipping completes the shipping step: the guard requires a full
// address plus a courier and a concrete option. The submitted option is
// advisory only. Its courier and service must match a fresh quote for the
// order's weight and the given destination, and the quoted cost is what
// gets persisted, so a client cannot write its own shipping cost into the
// totals.
func (s *Service) UpdateShipping(ctx context.Context, orderID string, dest shipping.Destination, addr shipping.Address, opt shipping.Option) (*Order, error) {
	o, err := s.openOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	sess := s.sessionAt(o, checkout.StepShipping)
	sess, err = checkout.SetAddress(sess, addr)
	if err != nil {
		return nil, err
	}

	if opt.Cost.IsNegative() {
		return nil, shipping.ErrNegativeCost
	}
	quoted, err := s.verifyOption(ctx, o, dest, opt)
	if err != nil {
		return nil, err
	}

	sess, err = checkout.SelectOption(sess, quoted)
	if err != nil {
		return nil, err
	}
	if _, err := checkout.CompleteShipping(sess); err != nil {
		return nil, err
	}

	o.Address = addr
	chosen := quoted
	o.ShippingOption = &chosen
	o.Totals = s.computeTotals(o)

	if err := s.orders.UpdateShipping(ctx, o.ID, addr, quoted, o.Totals); err != nil {
		return nil, errors.Wrap(err, "persist shipping step")
	}
	return o, nil
}

// verifyOption re-quotes the rate API for the order's shipment weight and
// returns the server-side option matching the submitted courier and service.
// A pair absent from the fresh quote yields shipping.ErrUnknownOption.
func (s *Service) verifyOption(ctx context.Context, o *Order, dest shipping.Destination, opt shipping.Option) (shipping.Option, error) {
	snap, err := cart.Resolve(cartItems(o))
	if err != nil {
		return shipping.Option{}, err
	}

	c := shipping.NewCoordinator(s.rates)
	c.SetDestination(dest)
	c.SetCourier(opt.Courier)
	if _, err := c.FetchOptions(ctx, snap.TotalWeight); err != nil {
		return shipping.Option{}, err
	}
	return c.Select(opt.Courier, opt.Service)
}

// InitiatePayment completes the payment step: it snapshots the discount (if
// a code is given), computes the payable total, and opens a payment session
// with the gateway. An existing token for the same selection is returned
// as-is so repeated initiation does not open duplicate payment sessions.
func (s *Service) InitiatePayment(ctx context.Context, orderID, discountCode string) (*Order, error) {
	o, err := s.openOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Shipping guard must have passed before payment.
	sess := s.sessionAt(o, checkout.StepShipping)
	sess, err = checkout.CompleteShipping(sess)
	if err != nil {
		return nil, err
	}

	// Repeated initiation with the same discount selection reuses the token
	// instead of opening a second payment session.
	if o.PaymentToken != "" && previousCode(o) == discountCode {
		return o, nil
	}

	snap, err := s.snapshotDiscount(ctx, discountCode)
	if err != nil {
		return nil, err
	}
	o.Discount = snap
	o.Totals = s.computeTotals(o)

	token, initErr := s.gateway.Initiate(ctx, o.ID, o.Totals.Total)
	sess, err = checkout.CompletePayment(sess, token, initErr)
	if err != nil {
		if initErr != nil {
			return nil, errors.Wrap(checkout.ErrPaymentInitiationFailed, initErr.Error())
		}
		return nil, err
	}
	o.PaymentToken = sess.Token

	if err := s.orders.UpdatePayment(ctx, o.ID, o.Discount, o.PaymentToken, o.Totals); err != nil {
		return nil, errors.Wrap(err, "persist payment step")
	}
	return o, nil
}

// PlaceOrder confirms the payment and completes the order. It is
// idempotent: a second call for an already-completed order returns the
// stored result without touching the gateway again. Before confirming, the
// totals are recomputed from the persisted order data; this recompute is
// the trust boundary, so a discount that expired or was deactivated since
// selection contributes nothing and the server value silently replaces
// whatever the client displayed.
func (s *Service) PlaceOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCompleted {
		return o, nil
	}
	if o.Status == StatusCancelled {
		return nil, ErrOrderClosed
	}

	sess := s.sessionAt(o, checkout.StepReview)
	if sess.Step != checkout.StepReview {
		return nil, checkout.ErrWrongStep
	}

	// Authoritative recompute at the trust boundary.
	o.Discount = s.revalidateDiscount(ctx, o.Discount)
	o.Totals = s.computeTotals(o)

	result, err := s.gateway.Confirm(ctx, o.PaymentToken)
	if err != nil {
		return nil, errors.Wrap(checkout.ErrPaymentNotConfirmed, err.Error())
	}
	if _, err := checkout.Confirm(sess, result); err != nil {
		return nil, err
	}

	o.Status = StatusCompleted
	if err := s.orders.SetStatus(ctx, o.ID, StatusCompleted, o.Totals); err != nil {
		return nil, errors.Wrap(err, "complete order")
	}
	return o, nil
}

// Cancel abandons a pending checkout.
func (s *Service) Cancel(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.openOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Status = StatusCancelled
	if err := s.orders.SetStatus(ctx, o.ID, StatusCancelled, o.Totals); err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return o, nil
}

func (s *Service) openOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, ErrOrderClosed
	}
	return o, nil
}

// sessionAt reconstructs the checkout session for an order at the given
// step from its persisted data, so the pure transition guards apply to
// server-side step completions too.
func (s *Service) sessionAt(o *Order, step checkout.Step) checkout.Session {
	sess := checkout.Session{
		Step:    step,
		Address: o.Address,
	}
	snap, err := cart.Resolve(cartItems(o))
	if err == nil {
		sess.Cart = snap
	}
	if o.ShippingOption != nil {
		sess.Courier = o.ShippingOption.Courier
		sess.Option = *o.ShippingOption
		sess.HasQuote = true
	}
	if o.Discount != nil {
		sess.Discount = *o.Discount
	}
	if o.PaymentToken != "" {
		sess.Token = o.PaymentToken
	} else if step == checkout.StepReview {
		// No token yet: review is unreachable.
		sess.Step = checkout.StepPayment
	}
	return sess
}

// snapshotDiscount resolves a discount code into an immutable snapshot.
// An empty code means no discount. Value ranges are validated here even for
// registry-sourced records.
func (s *Service) snapshotDiscount(ctx context.Context, code string) (*discount.Snapshot, error) {
	if code == "" {
		return nil, nil
	}
	d, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !d.Eligible(s.now()) {
		return nil, ErrDiscountNotEligible
	}
	snap, err := discount.NewSnapshot(*d)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// revalidateDiscount re-checks a previously selected discount against the
// registry. Lookup failures and ineligible records both drop the discount:
// the earlier client-side selection was advisory only.
func (s *Service) revalidateDiscount(ctx context.Context, snap *discount.Snapshot) *discount.Snapshot {
	if snap == nil {
		return nil
	}
	d, err := s.discounts.FindByID(ctx, snap.DiscountID)
	if err != nil {
		d = nil
	}
	revalidated := snap.Revalidate(d, s.now())
	if revalidated.IsZero() {
		return nil
	}
	return &revalidated
}

func (s *Service) computeTotals(o *Order) Totals {
	snap, err := cart.Resolve(cartItems(o))
	if err != nil {
		return o.Totals
	}

	var d discount.Snapshot
	if o.Discount != nil {
		d = *o.Discount
	}

	shippingCost := orderShippingCost(o)
	return Totals{
		Subtotal:       snap.Subtotal,
		DiscountAmount: d.AmountFor(snap.Subtotal),
		ShippingCost:   shippingCost,
		Total:          checkout.Total(snap.Subtotal, d, shippingCost),
	}
}

func cartItems(o *Order) []cart.LineItem {
	items := make([]cart.LineItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = cart.LineItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			UnitWeight: item.UnitWeight,
		}
	}
	return items
}

func orderShippingCost(o *Order) decimal.Decimal {
	if o.ShippingOption != nil {
		return o.ShippingOption.Cost
	}
	return decimal.Zero
}

func previousCode(o *Order) string {
	if o.Discount == nil {
		return ""
	}
	return o.Discount.Code
}
