package postgres

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

// LoadAll returns every stored rate. An empty table is not an error.
func (r *RateRepository) LoadAll(ctx context.Context) (domain.RateTable, error) {
	const q = `select code, rate::text from currency_rates;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency rates: %w", err)
	}
	defer rows.Close()

	rates := make(domain.RateTable, 64)
	for rows.Next() {
		var code, raw string
		if err = rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan currency rate: %w", err)
		}
		value, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse rate %q for %s: %w", raw, code, parseErr)
		}
		rates[code] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency rates: %w", err)
	}
	return rates, nil
}

// UpsertAll inserts or updates one row per currency in a single transaction.
// Currencies absent from rates are left untouched.
func (r *RateRepository) UpsertAll(ctx context.Context, rates domain.RateTable) error {
	if len(rates) == 0 {
		return nil
	}

	codes := rates.Codes()
	values := make([]string, 0, len(codes))
	for _, code := range codes {
		values = append(values, rates[code].String())
	}

	const q = `
		insert into currency_rates (code, rate, updated_at)
		select r.code, r.rate::numeric, now()
		from unnest($1::text[], $2::text[]) as r(code, rate)
		on conflict (code) do update
		set rate = excluded.rate, updated_at = now();
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, q, codes, values); err != nil {
		return fmt.Errorf("failed to upsert %d currency rates: %w", len(codes), err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
