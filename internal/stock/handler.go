package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Amos-12/stock-management-sub001/internal/platform/httpx"
	"github.com/Amos-12/stock-management-sub001/internal/shared"
)

// MetricsObserver receives adjustment outcome counts.
type MetricsObserver interface {
	ObserveAdjustment(adjustmentType string)
	ObserveConflict()
}

// Handler wires the stock HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	metrics  MetricsObserver
	validate *validator.Validate
}

// NewHandler constructs the stock handler.
func NewHandler(logger *slog.Logger, service *Service, metrics MetricsObserver) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers product stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/low-stock", h.listLowStock)
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/stock", h.getStock)
		r.Post("/adjustments", h.postAdjustment)
		r.Get("/movements", h.listMovements)
	})
}

type adjustmentRequest struct {
	Type     string          `json:"type" validate:"required,oneof=add remove set"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Reason   string          `json:"reason" validate:"required"`
	ActorID  string          `json:"actor_id" validate:"required,uuid"`
}

type adjustmentResponse struct {
	ProductID int64           `json:"product_id"`
	Type      string          `json:"type"`
	Previous  decimal.Decimal `json:"previous_quantity"`
	New       decimal.Decimal `json:"new_quantity"`
}

func (h *Handler) postAdjustment(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", fieldName(invalid[0]), "invalid value")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request")
		return
	}

	result, err := h.service.Apply(r.Context(), ApplyInput{
		ProductID:      productID,
		Type:           AdjustmentType(req.Type),
		Quantity:       req.Quantity,
		Reason:         req.Reason,
		ActorID:        req.ActorID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.respondApplyError(w, r, productID, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveAdjustment(req.Type)
	}
	httpx.JSON(w, http.StatusOK, adjustmentResponse{
		ProductID: productID,
		Type:      req.Type,
		Previous:  result.Previous,
		New:       result.New,
	})
}

func (h *Handler) respondApplyError(w http.ResponseWriter, r *http.Request, productID int64, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", validation.Field, validation.Message)
		return
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		if h.metrics != nil {
			h.metrics.ObserveConflict()
		}
		httpx.Problem(w, http.StatusConflict, "Conflict", "stock changed since last read, re-read and retry")
		return
	}
	if errors.Is(err, shared.ErrIdempotencyConflict) {
		httpx.Problem(w, http.StatusConflict, "Conflict", "duplicate request")
		return
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
		return
	}
	h.logger.Error("apply adjustment", slog.Int64("product_id", productID), slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "operation failed, please retry")
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	overview, err := h.service.GetOverview(r.Context(), productID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
			return
		}
		h.logger.Error("load stock overview", slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	low, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": low, "count": len(low)})
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	filter := HistoryFilter{ProductID: productID}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "from", "use YYYY-MM-DD")
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "to", "use YYYY-MM-DD")
			return
		}
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "limit", "must be a positive integer")
			return
		}
		filter.Limit = limit
	}
	movements, err := h.service.History(r.Context(), filter)
	if err != nil {
		var validation *ValidationError
		if errors.As(err, &validation) {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", validation.Field, validation.Message)
			return
		}
		h.logger.Error("list movements", slog.Int64("product_id", productID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": movements, "count": len(movements)})
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "product_id", "must be a positive integer")
		return 0, false
	}
	return id, true
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Type":
		return "type"
	case "Quantity":
		return "quantity"
	case "Reason":
		return "reason"
	case "ActorID":
		return "actor_id"
	}
	return fe.Field()
}
