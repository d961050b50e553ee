package handler

import (
	"errors"
	"fxconvert/internal/domain"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PriceDictResponse struct {
	Currency  string                     `json:"currency" example:"USD"`
	UnitPrice decimal.Decimal            `json:"unit_price" swaggertype:"string" example:"100"`
	Prices    map[string]decimal.Decimal `json:"prices" swaggertype:"object,string" example:"EUR:91"`
}

// PriceDict godoc
// @Summary Price in several currencies
// @Description Converts unit_price into each configured target currency known to the rate table
// @Tags Rates
// @Produce json
// @Param currency query string true "Currency of unit_price" example(USD)
// @Param unit_price query string false "Unit price, empty means 0" example(100)
// @Success 200 {object} PriceDictResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/prices [get]
func (h *Handler) PriceDict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	currency, err := h.validator.NormalizeCode(q.Get("currency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "currency: "+err.Error())
		return
	}
	unitPrice, err := h.validator.ParseAmount(q.Get("unit_price"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := h.service.PriceDict(r.Context(), currency, unitPrice, nil)
	if err != nil {
		if errors.Is(err, domain.ErrMissingRate) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		msg := "ups, couldn't build prices this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "PriceDict", "currency": currency}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := PriceDictResponse{Currency: currency, Prices: prices}
	if unitPrice != nil {
		res.UnitPrice = *unitPrice
	}
	writeJSON(w, http.StatusOK, res)
}
