package rate

import (
	"errors"
	"fxconvert/internal/domain"
	"strings"

	"github.com/shopspring/decimal"
)

const maxAmountLen = 32

var (
	ErrCodeRequired  = errors.New("currency code is required")
	ErrCodeInvalid   = errors.New("currency code must be 3 latin letters")
	ErrAmountInvalid = errors.New("amount must be a plain decimal number")
)

type RequestValidator struct{}

// NormalizeCode upper-cases and trims code, then checks its format.
func (v *RequestValidator) NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrCodeRequired
	}
	if !domain.IsCurrencyCode(code) {
		return "", ErrCodeInvalid
	}
	return code, nil
}

// ParseAmount parses a plain decimal amount. An empty value yields nil, which
// conversions treat as zero. Exponent notation is rejected to keep results bounded.
func (v *RequestValidator) ParseAmount(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if len(raw) > maxAmountLen || strings.ContainsAny(raw, "eE") {
		return nil, ErrAmountInvalid
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, ErrAmountInvalid
	}
	return &amount, nil
}

func NewValidator() *RequestValidator {
	return &RequestValidator{}
}
