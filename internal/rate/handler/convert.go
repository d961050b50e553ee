package handler

import (
	"errors"
	"fxconvert/internal/domain"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	From   string          `json:"from" example:"USD"`
	To     string          `json:"to" example:"EUR"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
	Result decimal.Decimal `json:"result" swaggertype:"string" example:"91"`
}

// Convert godoc
// @Summary Convert an amount
// @Description Converts amount between two currencies and rounds the result up to a whole unit
// @Tags Rates
// @Produce json
// @Param amount query string false "Amount, empty means 0" example(100)
// @Param from query string true "Source currency code" example(USD)
// @Param to query string true "Target currency code" example(EUR)
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/convert [get]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := h.validator.NormalizeCode(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := h.validator.NormalizeCode(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}
	amount, err := h.validator.ParseAmount(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Convert(r.Context(), amount, from, to, nil)
	if err != nil {
		if errors.Is(err, domain.ErrMissingRate) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		msg := "ups, couldn't convert amount this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Convert", "from": from, "to": to}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := ConvertResponse{From: from, To: to, Result: result}
	if amount != nil {
		res.Amount = *amount
	}
	writeJSON(w, http.StatusOK, res)
}
