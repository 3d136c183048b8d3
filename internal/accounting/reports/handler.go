package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
}

func paramsFromQuery(r *http.Request) (Params, bool) {
	p := Params{Currency: r.URL.Query().Get("currency")}
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Params{}, false
		}
		// include the whole report day
		end := t.Add(24*time.Hour - time.Nanosecond)
		p.AsOf = end
	}
	if raw := r.URL.Query().Get("exchange_rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return Params{}, false
		}
		p.ExchangeRate = &rate
	}
	return p, true
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := paramsFromQuery(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report parameters")
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), p)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	p, ok := paramsFromQuery(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report parameters")
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), p)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}
