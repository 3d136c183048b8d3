package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Disable)
}

type entryRequest struct {
	AccountNumber string          `json:"account_number" validate:"required,min=1,max=20"`
	Ref           string          `json:"ref" validate:"max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

type createPageRequest struct {
	Source      string         `json:"source" validate:"required,min=1,max=100"`
	Ref         string         `json:"ref" validate:"max=100"`
	Description string         `json:"description" validate:"max=500"`
	Currency    string         `json:"currency" validate:"omitempty,oneof=USD KHR"`
	Entries     []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := PageInput{
		Source:      req.Source,
		Ref:         req.Ref,
		Description: req.Description,
		Currency:    req.Currency,
	}
	for _, entry := range req.Entries {
		in.Entries = append(in.Entries, EntryInput{
			AccountNumber: entry.AccountNumber,
			Ref:           entry.Ref,
			Description:   entry.Description,
			Debit:         entry.Debit,
			Credit:        entry.Credit,
		})
	}
	page, err := h.service.CreatePage(r.Context(), in)
	if err != nil {
		h.logger.Error("create journal page", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid page id")
		return
	}
	page, err := h.service.GetPage(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		RefContains:         r.URL.Query().Get("ref"),
		SourceContains:      r.URL.Query().Get("source"),
		DescriptionContains: r.URL.Query().Get("description"),
		IncludeDisabled:     r.URL.Query().Get("include_disabled") == "true",
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.To = &end
		}
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.UserID = &id
		}
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PageSize, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	pages, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list journal pages", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pages": pages, "pagination": pagination})
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid page id")
		return
	}
	if err := h.service.Disable(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
