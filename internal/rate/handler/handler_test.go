package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fxconvert/internal/domain"
	"fxconvert/internal/rate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) GetRates(ctx context.Context) (domain.RateTable, error) {
	args := m.Called(ctx)
	rates, _ := args.Get(0).(domain.RateTable)
	return rates, args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context) (domain.RateTable, error) {
	args := m.Called(ctx)
	rates, _ := args.Get(0).(domain.RateTable)
	return rates, args.Error(1)
}

func (m *MockService) Convert(ctx context.Context, amount *decimal.Decimal, from, to string, rates domain.RateTable) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to, rates)
	v, _ := args.Get(0).(decimal.Decimal)
	return v, args.Error(1)
}

func (m *MockService) PriceDict(ctx context.Context, from string, unitPrice *decimal.Decimal, rates domain.RateTable) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, from, unitPrice, rates)
	v, _ := args.Get(0).(map[string]decimal.Decimal)
	return v, args.Error(1)
}

type errorJSON struct {
	Error string `json:"error"`
}

func newHandler() (*Handler, *MockService) {
	svc := new(MockService)
	return NewRateHandler(rate.NewValidator(), svc), svc
}

func amountIs(s string) any {
	return mock.MatchedBy(func(a *decimal.Decimal) bool {
		return a != nil && a.Equal(decimal.RequireFromString(s))
	})
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var ej errorJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ej))
	return ej.Error
}

// --- GetRates ---

func TestHandler_GetRates_Success(t *testing.T) {
	h, svc := newHandler()
	svc.On("GetRates", mock.Anything).Return(domain.RateTable{"EUR": decimal.NewFromInt(1), "USD": decimal.RequireFromString("1.0842")}, nil).Once()

	rr := httptest.NewRecorder()
	h.GetRates(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "EUR", res.Base)
	require.Equal(t, map[string]string{"EUR": "1", "USD": "1.0842"}, res.Rates)
	svc.AssertExpectations(t)
}

func TestHandler_GetRates_InternalError(t *testing.T) {
	h, svc := newHandler()
	svc.On("GetRates", mock.Anything).Return(nil, errors.New("boom")).Once()

	rr := httptest.NewRecorder()
	h.GetRates(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "ups, couldn't get rates this time", decodeError(t, rr))
}

// --- Convert ---

func TestHandler_Convert_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{name: "from required", query: "to=EUR&amount=1", wantMsg: "from: " + rate.ErrCodeRequired.Error()},
		{name: "to invalid", query: "from=USD&to=EURO&amount=1", wantMsg: "to: " + rate.ErrCodeInvalid.Error()},
		{name: "amount invalid", query: "from=USD&to=EUR&amount=ten", wantMsg: rate.ErrAmountInvalid.Error()},
		{name: "amount exponent", query: "from=USD&to=EUR&amount=1e400", wantMsg: rate.ErrAmountInvalid.Error()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, svc := newHandler()

			rr := httptest.NewRecorder()
			h.Convert(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?"+tc.query, nil))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.wantMsg, decodeError(t, rr))
			svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Convert_Success(t *testing.T) {
	h, svc := newHandler()
	svc.On("Convert", mock.Anything, amountIs("100"), "USD", "EUR", domain.RateTable(nil)).
		Return(decimal.NewFromInt(91), nil).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?amount=100&from=usd&to=%20eur", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, map[string]string{"from": "USD", "to": "EUR", "amount": "100", "result": "91"}, res)
	svc.AssertExpectations(t)
}

func TestHandler_Convert_EmptyAmountPassedAsNil(t *testing.T) {
	h, svc := newHandler()
	svc.On("Convert", mock.Anything, (*decimal.Decimal)(nil), "USD", "EUR", domain.RateTable(nil)).
		Return(decimal.Zero, nil).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?from=USD&to=EUR", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestHandler_Convert_MissingRate(t *testing.T) {
	h, svc := newHandler()
	svc.On("Convert", mock.Anything, mock.Anything, "XXX", "EUR", mock.Anything).
		Return(decimal.Zero, fmt.Errorf("%w: XXX", domain.ErrMissingRate)).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?amount=1&from=XXX&to=EUR", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "missing rate: XXX", decodeError(t, rr))
}

func TestHandler_Convert_InternalError(t *testing.T) {
	h, svc := newHandler()
	svc.On("Convert", mock.Anything, mock.Anything, "USD", "EUR", mock.Anything).
		Return(decimal.Zero, errors.New("provider down")).Once()

	rr := httptest.NewRecorder()
	h.Convert(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?amount=1&from=USD&to=EUR", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "ups, couldn't convert amount this time", decodeError(t, rr))
}

// --- PriceDict ---

func TestHandler_PriceDict_Success(t *testing.T) {
	h, svc := newHandler()
	prices := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(91), "USD": decimal.NewFromInt(100)}
	svc.On("PriceDict", mock.Anything, "USD", amountIs("100"), domain.RateTable(nil)).Return(prices, nil).Once()

	rr := httptest.NewRecorder()
	h.PriceDict(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/prices?currency=usd&unit_price=100", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res struct {
		Currency  string            `json:"currency"`
		UnitPrice string            `json:"unit_price"`
		Prices    map[string]string `json:"prices"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "USD", res.Currency)
	require.Equal(t, "100", res.UnitPrice)
	require.Equal(t, map[string]string{"EUR": "91", "USD": "100"}, res.Prices)
	svc.AssertExpectations(t)
}

func TestHandler_PriceDict_ValidationError(t *testing.T) {
	h, svc := newHandler()

	rr := httptest.NewRecorder()
	h.PriceDict(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/prices?unit_price=1", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "currency: "+rate.ErrCodeRequired.Error(), decodeError(t, rr))
	svc.AssertNotCalled(t, "PriceDict", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_PriceDict_MissingRate(t *testing.T) {
	h, svc := newHandler()
	svc.On("PriceDict", mock.Anything, "CHF", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: CHF", domain.ErrMissingRate)).Once()

	rr := httptest.NewRecorder()
	h.PriceDict(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rates/prices?currency=CHF&unit_price=1", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Refresh ---

func TestHandler_Refresh_Success(t *testing.T) {
	h, svc := newHandler()
	svc.On("Refresh", mock.Anything).Return(domain.RateTable{"EUR": decimal.NewFromInt(1), "USD": decimal.RequireFromString("1.1")}, nil).Once()

	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodPost, "/api/v1/rates/refresh", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var res RefreshResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, RefreshResponse{Base: "EUR", Currencies: 2}, res)
}

func TestHandler_Refresh_ProviderError(t *testing.T) {
	h, svc := newHandler()
	svc.On("Refresh", mock.Anything).Return(nil, errors.New("503")).Once()

	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodPost, "/api/v1/rates/refresh", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, "rates refresh failed", decodeError(t, rr))
}
