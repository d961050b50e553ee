package adapters

import (
	"context"
	"fxconvert/internal/domain"
)

// RateProvider fetches the latest rate table from an external FX API.
type RateProvider interface {
	FetchLatest(ctx context.Context) (domain.RateTable, error)
}

// RateStore is the durable, one-row-per-currency storage.
type RateStore interface {
	LoadAll(ctx context.Context) (domain.RateTable, error)
	UpsertAll(ctx context.Context, rates domain.RateTable) error
}

// RateCache keeps the whole table under a single key with no expiration.
type RateCache interface {
	Get(ctx context.Context) (domain.RateTable, bool, error)
	Set(ctx context.Context, rates domain.RateTable) error
}
