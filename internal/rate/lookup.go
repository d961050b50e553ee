package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"
)

const (
	tierCache    = "cache"
	tierStore    = "store"
	tierProvider = "provider"
)

// lookupStrategy is one step of the read cascade. A table counts as found
// only when it is present and non-empty.
type lookupStrategy struct {
	tier   string
	lookup func(ctx context.Context) (domain.RateTable, bool, error)
	// fill writes a table found in a slower tier into this one, nil if the tier is never repaired on read.
	fill func(ctx context.Context, rates domain.RateTable) error
	// writesThrough is set when a successful lookup already updated every faster tier.
	writesThrough bool
}

func (s *Service) strategies() []lookupStrategy {
	return []lookupStrategy{
		{
			tier:   tierCache,
			lookup: validated(tierCache, s.cache.Get),
			fill:   s.cache.Set,
		},
		{
			tier: tierStore,
			lookup: validated(tierStore, func(ctx context.Context) (domain.RateTable, bool, error) {
				rates, err := s.store.LoadAll(ctx)
				return rates, err == nil && !rates.IsEmpty(), err
			}),
		},
		{
			tier: tierProvider,
			lookup: func(ctx context.Context) (domain.RateTable, bool, error) {
				rates, err := s.Refresh(ctx)
				return rates, err == nil, err
			},
			writesThrough: true,
		},
	}
}

// validated rejects a found table that breaks the base or positivity invariants,
// so the cascade moves on to the next tier instead of serving it.
func validated(tier string, lookup func(ctx context.Context) (domain.RateTable, bool, error)) func(ctx context.Context) (domain.RateTable, bool, error) {
	return func(ctx context.Context) (domain.RateTable, bool, error) {
		rates, found, err := lookup(ctx)
		if err != nil || !found || rates.IsEmpty() {
			return rates, found, err
		}
		if err = rates.Validate(); err != nil {
			return nil, false, fmt.Errorf("%s returned invalid rate table: %w", tier, err)
		}
		return rates, true, nil
	}
}
