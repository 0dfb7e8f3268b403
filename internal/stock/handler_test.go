package stock

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Amos-12/stock-management-sub001/internal/platform/httpx"
)

func newTestRouter(t *testing.T, repo RepositoryPort) http.Handler {
	t.Helper()
	svc := NewService(repo, nil, nil, ServiceConfig{})
	handler := NewHandler(slog.New(slog.DiscardHandler), svc, nil)
	r := chi.NewRouter()
	r.Route("/products", handler.MountRoutes)
	return r
}

func TestPostAdjustment(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	router := newTestRouter(t, repo)

	body := `{"type":"add","quantity":"5","reason":"livraison","actor_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/products/1/adjustments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp adjustmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.ProductID)
	require.True(t, resp.Previous.Equal(dec(t, "10")))
	require.True(t, resp.New.Equal(dec(t, "15")))
}

func TestPostAdjustmentValidation(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	router := newTestRouter(t, repo)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad type", `{"type":"increment","quantity":"5","reason":"x","actor_id":"` + uuid.NewString() + `"}`, "type"},
		{"missing reason", `{"type":"add","quantity":"5","actor_id":"` + uuid.NewString() + `"}`, "reason"},
		{"bad actor", `{"type":"add","quantity":"5","reason":"x","actor_id":"admin"}`, "actor_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products/1/adjustments", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var problem httpx.ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Equal(t, tc.field, problem.Field)
		})
	}
}

func TestPostAdjustmentConflict(t *testing.T) {
	repo := newMemoryRepo(simpleProduct(t, "10"))
	repo.beforeTx = func(r *memoryRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		p := r.products[1]
		p.Quantity = dec(t, "12")
		r.products[1] = p
	}
	router := newTestRouter(t, repo)

	body := `{"type":"add","quantity":"5","reason":"livraison","actor_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/products/1/adjustments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostAdjustmentUnknownProduct(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo())

	body := `{"type":"add","quantity":"5","reason":"livraison","actor_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/products/99/adjustments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStock(t *testing.T) {
	product := simpleProduct(t, "42")
	router := newTestRouter(t, newMemoryRepo(product))

	req := httptest.NewRequest(http.MethodGet, "/products/1/stock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var overview Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	require.Equal(t, "Tuyau PVC", overview.Name)
	require.Equal(t, AvailabilityHigh, overview.Availability)
}

func TestGetStockBadID(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/products/abc/stock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMovementsBadDate(t *testing.T) {
	router := newTestRouter(t, newMemoryRepo(simpleProduct(t, "10")))

	req := httptest.NewRequest(http.MethodGet, "/products/1/movements?from=yesterday", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLowStockRoute(t *testing.T) {
	low := simpleProduct(t, "2")
	fine := simpleProduct(t, "50")
	fine.ID = 2
	router := newTestRouter(t, newMemoryRepo(low, fine))

	req := httptest.NewRequest(http.MethodGet, "/products/low-stock", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []Overview `json:"items"`
		Count int        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
}
