// Command seed-db runs migrations and loads the sample discount registry
// from a JSON file. It is intended for local development and demo setups.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/widyatama/vesti-checkout/internal/domain/discount"
	"github.com/widyatama/vesti-checkout/internal/storage/postgres"
)

type discountJSON struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	Status       string          `json:"status"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
}

func main() {
	var (
		databaseURL   string
		discountsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&discountsFile, "discounts-file", "db/seed/discounts.json", "path to discounts JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, discountsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, discountsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedDiscounts(ctx, postgres.NewDiscountRepository(pool), discountsFile); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	return nil
}

func seedDiscounts(ctx context.Context, repo *postgres.DiscountRepository, discountsFile string) error {
	slog.Info("reading discounts file", slog.String("path", discountsFile))

	data, err := os.ReadFile(discountsFile)
	if err != nil {
		return errors.Wrap(err, "read discounts file")
	}

	var records []discountJSON
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Wrap(err, "parse discounts JSON")
	}

	slog.Info("upserting discounts", slog.Int("count", len(records)))

	for _, rec := range records {
		if err := repo.Upsert(ctx, discount.Discount{
			ID:        rec.ID,
			Code:      rec.Code,
			Type:      discount.Type(rec.DiscountType),
			Value:     rec.Value,
			Status:    discount.Status(rec.Status),
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
		}); err != nil {
			return errors.Wrapf(err, "upsert discount %s", rec.Code)
		}

		slog.Info("upserted discount", slog.String("code", rec.Code), slog.String("type", rec.DiscountType))
	}
	return nil
}
