package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Amos-12/stock-management-sub001/internal/currency"
)

// RateSource supplies the exchange rate a report converts with. The rate is
// read once per request so every bucket of a report uses the same value.
type RateSource interface {
	Get(ctx context.Context) (currency.Rate, error)
}

// Service computes sales reports.
type Service struct {
	repo  RepositoryPort
	rates RateSource
	cache *Cache
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates RateSource, cache *Cache) *Service {
	return &Service{repo: repo, rates: rates, cache: cache}
}

// ValidationError rejects a malformed report query.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("reporting: invalid %s: %s", e.Field, e.Message)
}

func (s *Service) validate(q Query) error {
	if !q.Bucketing.Valid() {
		return &ValidationError{Field: "bucket", Message: "must be daily or weekly"}
	}
	if !q.Target.Valid() {
		return &ValidationError{Field: "target", Message: "must be HTG or USD"}
	}
	if q.From.IsZero() || q.To.IsZero() || !q.To.After(q.From) {
		return &ValidationError{Field: "from", Message: "range must be non-empty"}
	}
	return nil
}

// SalesReport aggregates sale lines over [From, To) into the requested
// buckets. Results are cached under the current cache version.
func (s *Service) SalesReport(ctx context.Context, q Query) (Report, error) {
	if err := s.validate(q); err != nil {
		return Report{}, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildReport(ctx, q)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Report{}, err
		}
		return value.(Report), nil
	}
	key, err := s.cache.BuildKey(ctx, keySales(q, false))
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return Report{}, err
	}
	return report, nil
}

// Compare pairs the requested range with the window of equal length
// immediately before it. Both series load concurrently; the previous one is
// padded or truncated so the lengths match. Comparisons cache under the same
// version as plain reports, so one Bump invalidates both.
func (s *Service) Compare(ctx context.Context, q Query) (Comparison, error) {
	if err := s.validate(q); err != nil {
		return Comparison{}, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildComparison(ctx, q)
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Comparison{}, err
		}
		return value.(Comparison), nil
	}
	key, err := s.cache.BuildKey(ctx, keySales(q, true))
	if err != nil {
		return Comparison{}, err
	}
	var comparison Comparison
	if err := s.cache.FetchJSON(ctx, key, &comparison, loader); err != nil {
		return Comparison{}, err
	}
	return comparison, nil
}

func (s *Service) buildComparison(ctx context.Context, q Query) (Comparison, error) {
	previous := q
	window := q.To.Sub(q.From)
	previous.To = q.From
	previous.From = q.From.Add(-window)

	var comparison Comparison
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		report, err := s.buildReport(ctx, q)
		if err != nil {
			return err
		}
		comparison.Current = report
		return nil
	})
	group.Go(func() error {
		report, err := s.buildReport(ctx, previous)
		if err != nil {
			return err
		}
		comparison.Previous = report
		return nil
	})
	if err := group.Wait(); err != nil {
		return Comparison{}, err
	}
	comparison.Previous.Buckets = alignSeries(comparison.Previous.Buckets, len(comparison.Current.Buckets), q.Target, comparison.Previous.RateUsed)
	return comparison, nil
}

func (s *Service) buildReport(ctx context.Context, q Query) (Report, error) {
	rate, err := s.rates.Get(ctx)
	if err != nil {
		return Report{}, err
	}
	lines, err := s.repo.ListSaleLines(ctx, q.From, q.To)
	if err != nil {
		return Report{}, err
	}
	return bucketize(q, lines, rate.Value), nil
}

// bucketize groups lines into the full bucket grid of the range. Empty
// periods still produce a zero bucket so series over the same range always
// have the same length.
func bucketize(q Query, lines []SaleLine, rate decimal.Decimal) Report {
	type accumulator struct {
		revenue []currency.LineAmount
		profit  []currency.LineAmount
		sales   map[int64]struct{}
	}
	grouped := map[string]*accumulator{}
	for _, line := range lines {
		key := bucketKey(q.Bucketing, line.SoldAt)
		acc, ok := grouped[key]
		if !ok {
			acc = &accumulator{sales: map[int64]struct{}{}}
			grouped[key] = acc
		}
		acc.revenue = append(acc.revenue, currency.LineAmount{Amount: line.Subtotal, Currency: line.Currency})
		acc.profit = append(acc.profit, currency.LineAmount{Amount: line.Profit, Currency: line.Currency})
		acc.sales[line.SaleID] = struct{}{}
	}

	report := Report{
		Bucketing: q.Bucketing,
		From:      q.From,
		To:        q.To,
		RateUsed:  rate,
	}
	allRevenue := []currency.LineAmount{}
	allProfit := []currency.LineAmount{}
	allSales := map[int64]struct{}{}
	for _, start := range bucketStarts(q) {
		key := bucketKey(q.Bucketing, start)
		bucket := Bucket{
			Key:     key,
			Start:   start,
			Revenue: currency.Unify(nil, rate, q.Target),
			Profit:  currency.Unify(nil, rate, q.Target),
		}
		if acc, ok := grouped[key]; ok {
			bucket.Revenue = currency.Unify(acc.revenue, rate, q.Target)
			bucket.Profit = currency.Unify(acc.profit, rate, q.Target)
			bucket.Sales = len(acc.sales)
			allRevenue = append(allRevenue, acc.revenue...)
			allProfit = append(allProfit, acc.profit...)
			for id := range acc.sales {
				allSales[id] = struct{}{}
			}
		}
		report.Buckets = append(report.Buckets, bucket)
	}
	report.Revenue = currency.Unify(allRevenue, rate, q.Target)
	report.Profit = currency.Unify(allProfit, rate, q.Target)
	report.Sales = len(allSales)
	return report
}

// bucketStarts enumerates the bucket start instants covering [From, To).
func bucketStarts(q Query) []time.Time {
	starts := []time.Time{}
	cursor := bucketStart(q.Bucketing, q.From)
	for cursor.Before(q.To) {
		starts = append(starts, cursor)
		if q.Bucketing == BucketWeekly {
			cursor = cursor.AddDate(0, 0, 7)
		} else {
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return starts
}

func bucketStart(b Bucketing, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if b != BucketWeekly {
		return day
	}
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday)
}

func bucketKey(b Bucketing, t time.Time) string {
	if b == BucketWeekly {
		year, week := bucketStart(b, t).ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return bucketStart(b, t).Format("2006-01-02")
}

// alignSeries forces the previous series to the current series' length.
// Shorter series repeat their last bucket; longer ones drop their oldest
// points.
func alignSeries(buckets []Bucket, length int, target currency.Code, rate decimal.Decimal) []Bucket {
	if length <= 0 {
		return []Bucket{}
	}
	if len(buckets) > length {
		return buckets[len(buckets)-length:]
	}
	for len(buckets) < length {
		var filler Bucket
		if len(buckets) > 0 {
			filler = buckets[len(buckets)-1]
		} else {
			filler = Bucket{
				Revenue: currency.Unify(nil, rate, target),
				Profit:  currency.Unify(nil, rate, target),
			}
		}
		buckets = append(buckets, filler)
	}
	return buckets
}
