package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the reference currency, its rate is always exactly 1.
const BaseCurrency = "EUR"

// RateTable maps an ISO currency code to its rate against BaseCurrency.
type RateTable map[string]decimal.Decimal

// Rate returns the rate for code. Non-positive rates are reported as absent.
func (t RateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t[code]
	if !ok || !r.IsPositive() {
		return decimal.Zero, false
	}
	return r, true
}

func (t RateTable) Has(code string) bool {
	_, ok := t.Rate(code)
	return ok
}

func (t RateTable) IsEmpty() bool { return len(t) == 0 }

// Codes returns the currency codes sorted alphabetically.
func (t RateTable) Codes() []string {
	return slices.Sorted(maps.Keys(t))
}

func (t RateTable) Clone() RateTable {
	return maps.Clone(t)
}

// Validate checks the base currency and positivity invariants.
func (t RateTable) Validate() error {
	if t.IsEmpty() {
		return ErrEmptyRates
	}
	for code, r := range t {
		if !IsCurrencyCode(code) {
			return fmt.Errorf("%w: bad currency code %q", ErrInvalidRate, code)
		}
		if !r.IsPositive() {
			return fmt.Errorf("%w: %s=%s", ErrInvalidRate, code, r.String())
		}
	}
	if base := t[BaseCurrency]; !base.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: base %s=%s", ErrInvalidRate, BaseCurrency, base.String())
	}
	return nil
}

// Normalize builds a table that satisfies the invariants out of raw provider
// values: codes are upper-cased, non-positive rates are dropped and the base
// currency is forced to 1. Dropped codes are returned for logging.
func Normalize(raw map[string]decimal.Decimal) (RateTable, []string) {
	t := make(RateTable, len(raw)+1)
	var dropped []string
	for code, r := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == BaseCurrency {
			continue
		}
		if !IsCurrencyCode(code) || !r.IsPositive() {
			dropped = append(dropped, code)
			continue
		}
		t[code] = r
	}
	t[BaseCurrency] = decimal.NewFromInt(1)
	slices.Sort(dropped)
	return t, dropped
}

// IsCurrencyCode reports whether s is a 3-letter uppercase code.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
