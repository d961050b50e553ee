package cache

import (
	"context"
	"errors"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/dgraph-io/ristretto"
)

var errRejected = errors.New("rate table rejected by cache admission policy")

// MemoryRateCache is an in-process rate table cache backed by ristretto.
type MemoryRateCache struct {
	cache *ristretto.Cache
	key   string
}

func NewMemoryRateCache(key string, maxItems int64) (*MemoryRateCache, error) {
	if maxItems <= 0 {
		maxItems = 16
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
		// cost is counted per table, not per byte
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory rate cache failed: %w", err)
	}
	return &MemoryRateCache{cache: c, key: key}, nil
}

func (c *MemoryRateCache) Get(_ context.Context) (domain.RateTable, bool, error) {
	v, ok := c.cache.Get(c.key)
	if !ok {
		return nil, false, nil
	}
	rates, ok := v.(domain.RateTable)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached value type %T", v)
	}
	return rates.Clone(), true, nil
}

// Set overwrites the entry without a TTL. The write is visible to Get on return.
func (c *MemoryRateCache) Set(_ context.Context, rates domain.RateTable) error {
	if !c.cache.Set(c.key, rates.Clone(), 1) {
		return errRejected
	}
	c.cache.Wait()
	if _, ok := c.cache.Get(c.key); !ok {
		return errRejected
	}
	return nil
}

func (c *MemoryRateCache) Close() { c.cache.Close() }
