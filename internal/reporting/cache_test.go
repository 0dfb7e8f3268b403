package reporting

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
)

type countingLines struct {
	memoryLines
	calls int
}

func (c *countingLines) ListSaleLines(ctx context.Context, from, to time.Time) ([]SaleLine, error) {
	c.calls++
	return c.memoryLines.ListSaleLines(ctx, from, to)
}

func newCachedService(t *testing.T, repo RepositoryPort) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(repo, fixedRate{value: dec(t, "132")}, cache)
}

func TestSalesReportCaches(t *testing.T) {
	repo := &countingLines{memoryLines: memoryLines{lines: []SaleLine{
		line(t, 1, "2026-03-02", "100", "40", currency.HTG),
	}}}
	svc := newCachedService(t, repo)

	ctx := context.Background()
	query := Query{
		From:      day(t, "2026-03-02"),
		To:        day(t, "2026-03-03"),
		Bucketing: BucketDaily,
		Target:    currency.HTG,
	}
	report, err := svc.SalesReport(ctx, query)
	require.NoError(t, err)
	require.True(t, report.Revenue.Unified.Equal(dec(t, "100")))
	require.Equal(t, 1, repo.calls)

	// Second call hits the cache.
	_, err = svc.SalesReport(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	// Bumping orphans every cached report.
	require.NoError(t, svc.cache.Bump(ctx))
	repo.lines = append(repo.lines, line(t, 2, "2026-03-02", "50", "25", currency.HTG))
	report, err = svc.SalesReport(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
	require.True(t, report.Revenue.Unified.Equal(dec(t, "150")))
}

func TestCompareCaches(t *testing.T) {
	repo := &countingLines{memoryLines: memoryLines{lines: []SaleLine{
		line(t, 1, "2026-03-01", "40", "20", currency.HTG),
		line(t, 2, "2026-03-02", "100", "40", currency.HTG),
	}}}
	svc := newCachedService(t, repo)

	ctx := context.Background()
	query := Query{
		From:      day(t, "2026-03-02"),
		To:        day(t, "2026-03-03"),
		Bucketing: BucketDaily,
		Target:    currency.HTG,
	}
	comparison, err := svc.Compare(ctx, query)
	require.NoError(t, err)
	require.True(t, comparison.Current.Revenue.Unified.Equal(dec(t, "100")))
	require.True(t, comparison.Previous.Revenue.Unified.Equal(dec(t, "40")))
	require.Equal(t, 2, repo.calls, "one load per window")

	// Second call hits the cache for the whole comparison.
	comparison, err = svc.Compare(ctx, query)
	require.NoError(t, err)
	require.True(t, comparison.Previous.Revenue.Unified.Equal(dec(t, "40")))
	require.Equal(t, 2, repo.calls)

	require.NoError(t, svc.cache.Bump(ctx))
	_, err = svc.Compare(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 4, repo.calls)
}

func TestCacheKeyVariesByQuery(t *testing.T) {
	a := keySales(Query{
		From: day(t, "2026-03-02"), To: day(t, "2026-03-03"),
		Bucketing: BucketDaily, Target: currency.HTG,
	}, false)
	b := keySales(Query{
		From: day(t, "2026-03-02"), To: day(t, "2026-03-03"),
		Bucketing: BucketWeekly, Target: currency.HTG,
	}, false)
	c := keySales(Query{
		From: day(t, "2026-03-02"), To: day(t, "2026-03-03"),
		Bucketing: BucketDaily, Target: currency.USD,
	}, false)
	d := keySales(Query{
		From: day(t, "2026-03-02"), To: day(t, "2026-03-03"),
		Bucketing: BucketDaily, Target: currency.HTG,
	}, true)
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, d, "comparisons live under their own key")
}
