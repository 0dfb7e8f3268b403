package currency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Rate is the process-wide exchange rate setting, quoted as gourdes per
// dollar. The row is overwritten in place; there is no rate history, so a
// report recomputed later uses the rate in effect at aggregation time.
type Rate struct {
	Value     decimal.Decimal `json:"rate"`
	Base      Code            `json:"base"`
	Quote     Code            `json:"quote"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ErrRateNotConfigured indicates the settings row has never been written.
var ErrRateNotConfigured = errors.New("currency: exchange rate not configured")

// RateRepository persists the single exchange-rate settings row.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository constructs RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// Get loads the current rate.
func (r *RateRepository) Get(ctx context.Context) (Rate, error) {
	if r == nil {
		return Rate{}, errors.New("currency: rate repository not initialised")
	}
	var rate Rate
	err := r.pool.QueryRow(ctx, `SELECT rate, base_currency, quote_currency, updated_at FROM exchange_rate_settings WHERE id = 1`).
		Scan(&rate.Value, &rate.Base, &rate.Quote, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, ErrRateNotConfigured
		}
		return Rate{}, err
	}
	return rate, nil
}

// Set overwrites the rate in place.
func (r *RateRepository) Set(ctx context.Context, value decimal.Decimal) (Rate, error) {
	if r == nil {
		return Rate{}, errors.New("currency: rate repository not initialised")
	}
	if value.Sign() <= 0 {
		return Rate{}, ErrInvalidRate
	}
	var rate Rate
	err := r.pool.QueryRow(ctx, `INSERT INTO exchange_rate_settings (id, rate, base_currency, quote_currency, updated_at)
VALUES (1, $1, $2, $3, NOW())
ON CONFLICT (id) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
RETURNING rate, base_currency, quote_currency, updated_at`, value, string(HTG), string(USD)).
		Scan(&rate.Value, &rate.Base, &rate.Quote, &rate.UpdatedAt)
	if err != nil {
		return Rate{}, err
	}
	return rate, nil
}
