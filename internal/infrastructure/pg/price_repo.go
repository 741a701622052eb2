package pg

import (
	"context"
	"fmt"
	"time"

	"btcprice-poller/internal/application"
	"btcprice-poller/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceRepo mirrors every record into the price_records table.
type PriceRepo struct{ db *DB }

var _ application.RecordSink = (*PriceRepo)(nil)

func NewPriceRepo(db *DB) *PriceRepo { return &PriceRepo{db: db} }

func (r *PriceRepo) Name() string { return "postgres" }

// Submit inserts rec; a record already stored for the same second is ignored.
func (r *PriceRepo) Submit(ctx context.Context, rec domain.PriceRecord) error {
	const ins = `
        INSERT INTO price_records(source, asset, currency, buy, sell, spot, captured_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (source, asset, currency, captured_at) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, ins,
		rec.Source, rec.Asset, rec.Currency,
		decimal.NewFromFloat32(rec.Buy),
		decimal.NewFromFloat32(rec.Sell),
		decimal.NewFromFloat32(rec.Spot),
		rec.Timestamp.UTC().Truncate(time.Second),
	)
	if err != nil {
		return fmt.Errorf("%w: postgres: insert record: %w", domain.ErrSubmit, err)
	}
	return nil
}

// Latest returns the newest stored record for asset/currency.
func (r *PriceRepo) Latest(ctx context.Context, asset, currency string) (domain.PriceRecord, error) {
	const q = `
        SELECT source, asset, currency, buy::text, sell::text, spot::text, captured_at
        FROM price_records
        WHERE asset=$1 AND currency=$2
        ORDER BY captured_at DESC
        LIMIT 1`
	var (
		out             domain.PriceRecord
		buy, sell, spot string
	)
	if err := r.db.Pool.QueryRow(ctx, q, asset, currency).
		Scan(&out.Source, &out.Asset, &out.Currency, &buy, &sell, &spot, &out.Timestamp); err != nil {
		return domain.PriceRecord{}, fmt.Errorf("postgres: latest record: %w", err)
	}
	for _, f := range []struct {
		raw string
		dst *float32
	}{{buy, &out.Buy}, {sell, &out.Sell}, {spot, &out.Spot}} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return domain.PriceRecord{}, fmt.Errorf("%w: postgres: amount %q: %v", domain.ErrParse, f.raw, err)
		}
		v, _ := d.Float64()
		*f.dst = float32(v)
	}
	return out, nil
}
