package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/domain/order"
	"github.com/widyatama/vesti-checkout/internal/domain/shipping"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, items, address, shipping_option, discount, subtotal, discount_amount, shipping_cost, total, payment_token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getOrderSQL = `SELECT id, items, address, shipping_option, discount,
		subtotal, discount_amount, shipping_cost, total, payment_token, status, created_at
		FROM orders WHERE id = $1`

	updateShippingSQL = `UPDATE orders SET address = $2, shipping_option = $3,
		subtotal = $4, discount_amount = $5, shipping_cost = $6, total = $7
		WHERE id = $1`

	updatePaymentSQL = `UPDATE orders SET discount = $2, payment_token = $3,
		subtotal = $4, discount_amount = $5, shipping_cost = $6, total = $7
		WHERE id = $1`

	setStatusSQL = `UPDATE orders SET status = $2,
		subtotal = $3, discount_amount = $4, shipping_cost = $5, total = $6
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items, the address, the shipping option, and the discount snapshot are
// stored as JSONB; money amounts live in NUMERIC columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new pending order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshaling address: %w", err)
	}
	opt, err := marshalNullable(o.ShippingOption)
	if err != nil {
		return fmt.Errorf("marshaling shipping option: %w", err)
	}
	disc, err := marshalNullable(o.Discount)
	if err != nil {
		return fmt.Errorf("marshaling discount snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, items, addr, opt, disc,
		o.Totals.Subtotal, o.Totals.DiscountAmount, o.Totals.ShippingCost, o.Totals.Total,
		o.PaymentToken, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// Get returns the order by id, or order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}

// UpdateShipping persists the completed shipping step.
func (r *OrderRepository) UpdateShipping(ctx context.Context, id string, addr shipping.Address, opt shipping.Option, totals order.Totals) error {
	addrJSON, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshaling address: %w", err)
	}
	optJSON, err := json.Marshal(opt)
	if err != nil {
		return fmt.Errorf("marshaling shipping option: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateShippingSQL, id, addrJSON, optJSON,
		totals.Subtotal, totals.DiscountAmount, totals.ShippingCost, totals.Total)
	if err != nil {
		return fmt.Errorf("updating shipping for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdatePayment persists the discount snapshot and transaction token.
func (r *OrderRepository) UpdatePayment(ctx context.Context, id string, d *discount.Snapshot, token string, totals order.Totals) error {
	disc, err := marshalNullable(d)
	if err != nil {
		return fmt.Errorf("marshaling discount snapshot: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updatePaymentSQL, id, disc, token,
		totals.Subtotal, totals.DiscountAmount, totals.ShippingCost, totals.Total)
	if err != nil {
		return fmt.Errorf("updating payment for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SetStatus updates the order status together with the authoritative totals.
func (r *OrderRepository) SetStatus(ctx context.Context, id string, status order.Status, totals order.Totals) error {
	tag, err := r.pool.Exec(ctx, setStatusSQL, id, string(status),
		totals.Subtotal, totals.DiscountAmount, totals.ShippingCost, totals.Total)
	if err != nil {
		return fmt.Errorf("setting status for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var (
		o         order.Order
		items     []byte
		addr      []byte
		opt       []byte
		disc      []byte
		subtotal  decimal.Decimal
		discAmt   decimal.Decimal
		shipCost  decimal.Decimal
		total     decimal.Decimal
		status    string
		createdAt time.Time
	)
	err := row.Scan(
		&o.ID, &items, &addr, &opt, &disc,
		&subtotal, &discAmt, &shipCost, &total,
		&o.PaymentToken, &status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addr, &o.Address); err != nil {
		return nil, fmt.Errorf("unmarshaling address: %w", err)
	}
	if len(opt) > 0 {
		var so shipping.Option
		if err := json.Unmarshal(opt, &so); err != nil {
			return nil, fmt.Errorf("unmarshaling shipping option: %w", err)
		}
		o.ShippingOption = &so
	}
	if len(disc) > 0 {
		var ds discount.Snapshot
		if err := json.Unmarshal(disc, &ds); err != nil {
			return nil, fmt.Errorf("unmarshaling discount snapshot: %w", err)
		}
		o.Discount = &ds
	}

	o.Totals = order.Totals{
		Subtotal:       subtotal,
		DiscountAmount: discAmt,
		ShippingCost:   shipCost,
		Total:          total,
	}
	o.Status = order.Status(status)
	o.CreatedAt = createdAt
	return &o, nil
}

// marshalNullable marshals v to JSON, mapping a nil pointer to SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
