package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/discount"
)

const (
	getDiscountByCodeSQL = `SELECT id, code, discount_type, value, status, start_date, end_date
		FROM discounts WHERE UPPER(code) = UPPER($1)`

	getDiscountByIDSQL = `SELECT id, code, discount_type, value, status, start_date, end_date
		FROM discounts WHERE id = $1`

	upsertDiscountSQL = `INSERT INTO discounts (id, code, discount_type, value, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			status = EXCLUDED.status,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date`
)

var _ discount.Registry = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Registry backed by PostgreSQL.
// Status and validity are returned as stored; eligibility is decided by the
// domain at consumption time.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up a discount by its code (case-insensitive).
// Returns discount.ErrNotFound when no such code exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Discount, error) {
	return r.find(ctx, getDiscountByCodeSQL, code)
}

// FindByID looks up a discount by its identifier.
func (r *DiscountRepository) FindByID(ctx context.Context, id string) (*discount.Discount, error) {
	return r.find(ctx, getDiscountByIDSQL, id)
}

func (r *DiscountRepository) find(ctx context.Context, query, arg string) (*discount.Discount, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", arg, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount %q: %w", arg, err)
	}
	return &d, nil
}

// Upsert inserts or updates a discount record, keyed by code.
func (r *DiscountRepository) Upsert(ctx context.Context, d discount.Discount) error {
	_, err := r.pool.Exec(ctx, upsertDiscountSQL,
		d.ID, d.Code, string(d.Type), d.Value, string(d.Status), d.StartDate, d.EndDate,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert discount %s", d.Code)
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var (
		d            discount.Discount
		discountType string
		value        decimal.Decimal
		status       string
		startDate    time.Time
		endDate      time.Time
	)
	err := row.Scan(&d.ID, &d.Code, &discountType, &value, &status, &startDate, &endDate)
	d.Type = discount.Type(discountType)
	d.Value = value
	d.Status = discount.Status(status)
	d.StartDate = startDate
	d.EndDate = endDate
	return d, err
}
