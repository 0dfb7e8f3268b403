package reporting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
	"github.com/Amos-12/stock-management-sub001/internal/platform/httpx"
)

// Handler wires the report HTTP endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	maxTimeout time.Duration
}

// NewHandler constructs the report handler. maxTimeout bounds how long one
// report may take before the request fails closed.
func NewHandler(logger *slog.Logger, service *Service, maxTimeout time.Duration) *Handler {
	return &Handler{logger: logger, service: service, maxTimeout: maxTimeout}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.getSales)
}

func (h *Handler) getSales(w http.ResponseWriter, r *http.Request) {
	query, compare, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if h.maxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.maxTimeout)
		defer cancel()
	}

	var payload any
	var err error
	if compare {
		payload, err = h.service.Compare(ctx, query)
	} else {
		payload, err = h.service.SalesReport(ctx, query)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", validation.Field, validation.Message)
		return
	}
	if errors.Is(err, currency.ErrRateNotConfigured) {
		httpx.Problem(w, http.StatusConflict, "Conflict", "exchange rate not configured")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		httpx.Problem(w, http.StatusGatewayTimeout, "Timeout", "report took too long, narrow the range")
		return
	}
	h.logger.Error("build sales report", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

// parseQuery reads the report parameters. The range defaults to the last 30
// days, the bucketing to daily and the target currency to gourdes.
func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (Query, bool, bool) {
	values := r.URL.Query()
	query := Query{
		Bucketing: BucketDaily,
		Target:    currency.HTG,
	}
	if raw := values.Get("bucket"); raw != "" {
		query.Bucketing = Bucketing(raw)
		if !query.Bucketing.Valid() {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "bucket", "must be daily or weekly")
			return Query{}, false, false
		}
	}
	if raw := values.Get("target"); raw != "" {
		query.Target = currency.Code(raw)
		if !query.Target.Valid() {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "target", "must be HTG or USD")
			return Query{}, false, false
		}
	}

	now := time.Now().UTC()
	query.To = now
	query.From = now.AddDate(0, 0, -30)
	if raw := values.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "from", "use YYYY-MM-DD")
			return Query{}, false, false
		}
		query.From = from
	}
	if raw := values.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "to", "use YYYY-MM-DD")
			return Query{}, false, false
		}
		query.To = to.AddDate(0, 0, 1)
	}
	if !query.To.After(query.From) {
		httpx.FieldProblem(w, http.StatusBadRequest, "Validation Failed", "from", "range must be non-empty")
		return Query{}, false, false
	}

	compare := values.Get("compare") == "true"
	return query, compare, true
}
