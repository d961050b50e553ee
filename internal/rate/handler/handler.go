package handler

import (
	"context"
	"encoding/json"
	"fxconvert/internal/domain"
	"net/http"

	"github.com/shopspring/decimal"
)

type RateService interface {
	GetRates(ctx context.Context) (domain.RateTable, error)
	Refresh(ctx context.Context) (domain.RateTable, error)
	Convert(ctx context.Context, amount *decimal.Decimal, from, to string, rates domain.RateTable) (decimal.Decimal, error)
	PriceDict(ctx context.Context, from string, unitPrice *decimal.Decimal, rates domain.RateTable) (map[string]decimal.Decimal, error)
}

type RequestValidator interface {
	NormalizeCode(code string) (string, error)
	ParseAmount(raw string) (*decimal.Decimal, error)
}

type Handler struct {
	validator RequestValidator
	service   RateService
}

func NewRateHandler(validator RequestValidator, service RateService) *Handler {
	return &Handler{validator: validator, service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
