package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultTargets are the currencies a price dictionary is built for.
var DefaultTargets = []string{"EUR", "USD", "GBP", "RUB"}

// Convert returns ceil(amount * rate[to] / rate[from]). A nil amount is zero.
// Both codes must be present in rates.
func Convert(rates domain.RateTable, amount *decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rateFrom, ok := rates.Rate(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrMissingRate, from)
	}
	rateTo, ok := rates.Rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrMissingRate, to)
	}

	value := decimal.Zero
	if amount != nil {
		value = *amount
	}
	// multiplying first keeps results that are whole numbers exact
	return value.Mul(rateTo).Div(rateFrom).Ceil(), nil
}

// PriceDict converts unitPrice from currency into every target present in rates.
// Targets missing from rates are omitted.
func PriceDict(rates domain.RateTable, from string, unitPrice *decimal.Decimal, targets []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(targets))
	for _, target := range targets {
		if !rates.Has(target) {
			continue
		}
		converted, err := Convert(rates, unitPrice, from, target)
		if err != nil {
			return nil, err
		}
		prices[target] = converted
	}
	return prices, nil
}

// Convert uses rates when given, otherwise the current table from GetRates.
func (s *Service) Convert(ctx context.Context, amount *decimal.Decimal, from, to string, rates domain.RateTable) (decimal.Decimal, error) {
	rates, err := s.ratesOrCurrent(ctx, rates)
	if err != nil {
		return decimal.Zero, err
	}
	result, err := Convert(rates, amount, from, to)
	s.countConversion(err)
	return result, err
}

func (s *Service) PriceDict(ctx context.Context, from string, unitPrice *decimal.Decimal, rates domain.RateTable) (map[string]decimal.Decimal, error) {
	rates, err := s.ratesOrCurrent(ctx, rates)
	if err != nil {
		return nil, err
	}
	prices, err := PriceDict(rates, from, unitPrice, s.targets)
	s.countConversion(err)
	return prices, err
}

func (s *Service) ratesOrCurrent(ctx context.Context, rates domain.RateTable) (domain.RateTable, error) {
	if !rates.IsEmpty() {
		return rates, nil
	}
	current, err := s.GetRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current rates: %w", err)
	}
	return current, nil
}

func (s *Service) countConversion(err error) {
	result := "ok"
	if err != nil {
		result = "missing_rate"
	}
	s.metrics.ConversionsTotal.WithLabelValues(result).Inc()
}
