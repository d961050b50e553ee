package handler

import (
	"fxconvert/internal/domain"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type GetRatesResponse struct {
	Base  string                     `json:"base" example:"EUR"`
	Rates map[string]decimal.Decimal `json:"rates" swaggertype:"object,string" example:"USD:1.0842"`
}

// GetRates godoc
// @Summary Current rate table
// @Description Rates of every known currency against EUR
// @Tags Rates
// @Produce json
// @Success 200 {object} GetRatesResponse
// @Failure 500 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.GetRates(r.Context())
	if err != nil {
		msg := "ups, couldn't get rates this time"
		logrus.WithError(err).WithField("handler", "GetRates").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, GetRatesResponse{Base: domain.BaseCurrency, Rates: rates})
}
