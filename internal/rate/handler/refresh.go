package handler

import (
	"fxconvert/internal/domain"
	"net/http"

	"github.com/sirupsen/logrus"
)

type RefreshResponse struct {
	Base       string `json:"base" example:"EUR"`
	Currencies int    `json:"currencies" example:"170"`
}

// Refresh godoc
// @Summary Refresh rates now
// @Description Fetches the latest rates from the provider and writes them to the cache and the database
// @Tags Rates
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 502 {object} errorResponse
// @Router /rates/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.Refresh(r.Context())
	if err != nil {
		msg := "rates refresh failed"
		logrus.WithError(err).WithField("handler", "Refresh").Error(msg)
		writeError(w, http.StatusBadGateway, msg)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{Base: domain.BaseCurrency, Currencies: len(rates)})
}
