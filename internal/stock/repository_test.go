package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistoryQueryUnbounded(t *testing.T) {
	query, args := historyQuery(HistoryFilter{ProductID: 7})

	require.NotContains(t, query, "created_at >=")
	require.NotContains(t, query, "created_at <=")
	require.NotContains(t, query, "COALESCE", "unbound range params have no concrete type at prepare time")
	require.Contains(t, query, "LIMIT $2")
	require.Equal(t, []any{int64(7), 200}, args)
}

func TestHistoryQueryBounded(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	query, args := historyQuery(HistoryFilter{ProductID: 7, From: from, To: to, Limit: 50})

	require.Contains(t, query, "created_at >= $2")
	require.Contains(t, query, "created_at <= $3")
	require.Contains(t, query, "LIMIT $4")
	require.Equal(t, []any{int64(7), from, to, 50}, args)
}

func TestHistoryQueryFromOnly(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	query, args := historyQuery(HistoryFilter{ProductID: 7, From: from})

	require.Contains(t, query, "created_at >= $2")
	require.NotContains(t, query, "created_at <=")
	require.Contains(t, query, "LIMIT $3")
	require.Equal(t, []any{int64(7), from, 200}, args)
}
