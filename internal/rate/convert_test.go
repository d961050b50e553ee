package rate

import (
	"context"
	"errors"
	"testing"

	"fxconvert/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func amountOf(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestConvert(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0"), "USD": d("1.1"), "RUB": d("106.118839")}

	cases := []struct {
		name   string
		amount *decimal.Decimal
		from   string
		to     string
		want   string
	}{
		{name: "usd to eur rounds up", amount: amountOf("100"), from: "USD", to: "EUR", want: "91"},
		{name: "nil amount is zero", amount: nil, from: "USD", to: "EUR", want: "0"},
		{name: "same currency", amount: amountOf("12.01"), from: "USD", to: "USD", want: "13"},
		{name: "exact result stays exact", amount: amountOf("110"), from: "USD", to: "EUR", want: "100"},
		{name: "eur to rub", amount: amountOf("10"), from: "EUR", to: "RUB", want: "1062"},
		{name: "negative rounds toward zero", amount: amountOf("-100"), from: "USD", to: "EUR", want: "-90"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(rates, tc.amount, tc.from, tc.to)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestConvert_MissingRate(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0")}

	_, err := Convert(rates, amountOf("10"), "XXX", "EUR")
	require.ErrorIs(t, err, domain.ErrMissingRate)
	require.Contains(t, err.Error(), "XXX")

	_, err = Convert(rates, amountOf("10"), "EUR", "YYY")
	require.ErrorIs(t, err, domain.ErrMissingRate)
	require.Contains(t, err.Error(), "YYY")
}

func TestConvert_ZeroRateIsMissing(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0"), "USD": d("0")}

	_, err := Convert(rates, amountOf("10"), "USD", "EUR")
	require.ErrorIs(t, err, domain.ErrMissingRate)
}

func TestPriceDict_OnlyPresentTargets(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0"), "USD": d("1.1")}

	prices, err := PriceDict(rates, "USD", amountOf("100"), DefaultTargets)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	require.Equal(t, "91", prices["EUR"].String())
	require.Equal(t, "100", prices["USD"].String())
}

func TestPriceDict_NilUnitPrice(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0"), "USD": d("1.1"), "GBP": d("0.85"), "RUB": d("100")}

	prices, err := PriceDict(rates, "EUR", nil, DefaultTargets)
	require.NoError(t, err)
	require.Len(t, prices, 4)
	for code, price := range prices {
		require.True(t, price.IsZero(), code)
	}
}

func TestPriceDict_MissingSourceRate(t *testing.T) {
	rates := domain.RateTable{"EUR": d("1.0"), "USD": d("1.1")}

	_, err := PriceDict(rates, "CHF", amountOf("1"), DefaultTargets)
	require.ErrorIs(t, err, domain.ErrMissingRate)
}

// --- Service wrappers ---

func TestService_Convert_UsesGivenRates(t *testing.T) {
	svc, c, _, _, _ := newTestService(t)

	got, err := svc.Convert(context.Background(), amountOf("100"), "USD", "EUR", domain.RateTable{"USD": d("1.1"), "EUR": d("1.0")})
	require.NoError(t, err)
	require.Equal(t, "91", got.String())
	c.AssertNotCalled(t, "Get", mock.Anything)
}

func TestService_Convert_FetchesRatesWhenNotGiven(t *testing.T) {
	svc, c, _, _, _ := newTestService(t)
	ctx := context.Background()

	c.On("Get", ctx).Return(storedRates(), true, nil).Once()

	got, err := svc.Convert(ctx, amountOf("85"), "GBP", "EUR", nil)
	require.NoError(t, err)
	require.Equal(t, "100", got.String())
}

func TestService_Convert_PropagatesLookupError(t *testing.T) {
	svc, c, st, p, _ := newTestService(t)
	ctx := context.Background()

	c.On("Get", ctx).Return(nil, false, nil).Once()
	st.On("LoadAll", ctx).Return(nil, nil).Once()
	p.On("FetchLatest", mock.Anything).Return(nil, errors.New("provider down")).Once()

	_, err := svc.Convert(ctx, amountOf("1"), "USD", "EUR", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to get current rates")
}

func TestService_PriceDict_UsesConfiguredTargets(t *testing.T) {
	c := new(MockRateCache)
	svc := NewService(c, new(MockRateStore), new(MockRateProvider), newTestMetrics(), 0, []string{"GBP", "JPY"})
	ctx := context.Background()

	c.On("Get", ctx).Return(storedRates(), true, nil).Once()

	prices, err := svc.PriceDict(ctx, "EUR", amountOf("10"), nil)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	require.Equal(t, "9", prices["GBP"].String())
	c.AssertExpectations(t)
}
