package rate

import (
	"context"
	"errors"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultFetchTimeout = 15 * time.Second

type Service struct {
	cache    adapters.RateCache
	store    adapters.RateStore
	provider adapters.RateProvider
	metrics  *metrics.Metrics

	fetchTimeout time.Duration
	targets      []string
}

// GetRates returns the current rate table, trying the cache, then the store,
// then the external provider. A table found in the store is written back to the cache.
func (s *Service) GetRates(ctx context.Context) (domain.RateTable, error) {
	strategies := s.strategies()
	var lastErr error

	for i, st := range strategies {
		if st.tier == tierProvider {
			entry := logrus.WithField("tier", st.tier)
			if lastErr != nil {
				entry = entry.WithError(lastErr)
			}
			entry.Error("Get rates with fetch: cache and store returned no rates")
		}

		rates, found, err := st.lookup(ctx)
		switch {
		case err != nil:
			s.metrics.RateLookupsTotal.WithLabelValues(st.tier, metrics.ResultError).Inc()
			if i == len(strategies)-1 {
				return nil, err
			}
			logrus.WithError(err).WithField("tier", st.tier).Warn("Rate lookup failed, trying next tier")
			lastErr = err
			continue
		case !found || rates.IsEmpty():
			s.metrics.RateLookupsTotal.WithLabelValues(st.tier, metrics.ResultMiss).Inc()
			continue
		}

		s.metrics.RateLookupsTotal.WithLabelValues(st.tier, metrics.ResultHit).Inc()
		if !st.writesThrough {
			s.promote(ctx, strategies[:i], rates)
		}
		return rates, nil
	}
	return nil, domain.ErrEmptyRates
}

// promote copies rates into the faster tiers that missed.
func (s *Service) promote(ctx context.Context, faster []lookupStrategy, rates domain.RateTable) {
	for _, st := range faster {
		if st.fill == nil {
			continue
		}
		if err := st.fill(ctx, rates); err != nil {
			logrus.WithError(err).WithField("tier", st.tier).Warn("Failed to write rates back into faster tier")
		}
	}
}

// Refresh fetches the latest table from the provider, forces the base rate to 1,
// overwrites the cache and upserts every currency into the store.
func (s *Service) Refresh(ctx context.Context) (domain.RateTable, error) {
	start := time.Now()
	rates, err := s.refresh(ctx)
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RefreshTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}
	s.metrics.RefreshTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.metrics.RatesInTable.Set(float64(len(rates)))
	return rates, nil
}

func (s *Service) refresh(ctx context.Context) (domain.RateTable, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	raw, err := s.provider.FetchLatest(fetchCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to fetch rates within %s: %w", s.fetchTimeout, err)
		}
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}

	rates, dropped := domain.Normalize(raw)
	if len(dropped) > 0 {
		logrus.WithField("codes", dropped).Warn("Skipping invalid rates returned by provider")
	}

	// The cache is repaired from the store on the next read, so a cache failure does not abort the refresh.
	if err = s.cache.Set(ctx, rates); err != nil {
		logrus.WithError(err).Warn("Failed to write refreshed rates into cache")
	}
	if err = s.store.UpsertAll(ctx, rates); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed rates: %w", err)
	}

	logrus.WithField("currencies", len(rates)).Info("Currency rates refreshed")
	return rates, nil
}

func NewService(
	cache adapters.RateCache,
	store adapters.RateStore,
	provider adapters.RateProvider,
	m *metrics.Metrics,
	fetchTimeout time.Duration,
	targets []string,
) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	if len(targets) == 0 {
		targets = DefaultTargets
	}
	return &Service{
		cache:        cache,
		store:        store,
		provider:     provider,
		metrics:      m,
		fetchTimeout: fetchTimeout,
		targets:      append([]string(nil), targets...),
	}
}
