package currency

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/platform/httpx"
)

// RateStore abstracts rate persistence for the handler.
type RateStore interface {
	Get(ctx context.Context) (Rate, error)
	Set(ctx context.Context, value decimal.Decimal) (Rate, error)
}

// CacheInvalidator is notified after a rate change so cached report
// aggregates computed with the old rate stop being served.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Handler wires HTTP endpoints for the exchange-rate setting.
type Handler struct {
	logger      *slog.Logger
	store       RateStore
	invalidator CacheInvalidator
}

// NewHandler constructs the exchange-rate handler.
func NewHandler(logger *slog.Logger, store RateStore, invalidator CacheInvalidator) *Handler {
	return &Handler{logger: logger, store: store, invalidator: invalidator}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/exchange-rate", h.getRate)
	r.Put("/exchange-rate", h.putRate)
}

type rateResponse struct {
	Rate      Rate   `json:"setting"`
	Formatted string `json:"formatted"`
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.store.Get(r.Context())
	if err != nil {
		if errors.Is(err, ErrRateNotConfigured) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "exchange rate not configured")
			return
		}
		h.logger.Error("load exchange rate", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rateResponse{Rate: rate, Formatted: FormatAmount(rate.Value, HTG)})
}

type updateRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

func (h *Handler) putRate(w http.ResponseWriter, r *http.Request) {
	var req updateRateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "rate", "rate must be a number")
		return
	}
	if req.Rate.Sign() <= 0 {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "rate", "rate must be positive")
		return
	}
	rate, err := h.store.Set(r.Context(), req.Rate)
	if err != nil {
		if errors.Is(err, ErrInvalidRate) {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "rate", "rate must be positive")
			return
		}
		h.logger.Error("update exchange rate", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if h.invalidator != nil {
		if err := h.invalidator.Bump(r.Context()); err != nil {
			h.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	h.logger.Info("exchange rate updated", slog.String("rate", rate.Value.String()))
	httpx.JSON(w, http.StatusOK, rateResponse{Rate: rate, Formatted: FormatAmount(rate.Value, HTG)})
}
