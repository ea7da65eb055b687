package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	"github.com/Fuel4us/hype-revenue/internal/service/cache"
	"github.com/Fuel4us/hype-revenue/internal/services/merger"
)

var (
	day0  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock = func() time.Time { return time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC) }
)

type fakePrices struct {
	pts []models.PricePoint
	err error
}

func (f fakePrices) FetchPrices(context.Context) ([]models.PricePoint, error) { return f.pts, f.err }

type fakeFees struct {
	mu    sync.Mutex
	pts   []models.FeePoint
	err   error
	calls int
}

func (f *fakeFees) FetchFees(context.Context) ([]models.FeePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.pts, f.err
}

func (f *fakeFees) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeArchive struct {
	pts []models.OpenInterestPoint
	err error
}

func (f fakeArchive) History(context.Context) ([]models.OpenInterestPoint, error) { return f.pts, f.err }
func (f fakeArchive) Name() string { return "fake" }

type fakeLive struct {
	v     float64
	err   error
	block bool
}

func (f fakeLive) FetchOpenInterest(ctx context.Context) (float64, error) {
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return f.v, f.err
}

type recMetrics struct {
	mu     sync.Mutex
	errors []string
	cache  []string
	rows   int
}

func (m *recMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}
func (m *recMetrics) RecordLatency(string, float64) {}
func (m *recMetrics) RecordMergedRows(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = n
}
func (m *recMetrics) RecordLiveOpenInterest(float64) {}
func (m *recMetrics) RecordCache(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = append(m.cache, result)
}

func threeDaysOfFees() *fakeFees {
	return &fakeFees{pts: []models.FeePoint{
		{Timestamp: day0.Unix(), DailyFees: 100},
		{Timestamp: day0.AddDate(0, 0, 1).Unix(), DailyFees: 200},
		{Timestamp: day0.AddDate(0, 0, 2).Unix(), DailyFees: 300},
	}}
}

func TestGetDashboard_AllSourcesHealthy(t *testing.T) {
	m := &recMetrics{}
	uc := NewDashboardUseCase(
		fakePrices{pts: []models.PricePoint{{Date: "2024-01-03", Price: 25}, {Date: "2024-01-04", Price: 26}}},
		threeDaysOfFees(),
		fakeArchive{pts: []models.OpenInterestPoint{{Date: "2024-01-01", TotalOpenInterest: 1000}}},
		fakeLive{v: 4000},
		WithClock(clock),
		WithMetrics(m),
	)

	d, err := uc.GetDashboard(context.Background(), []int{30, 2, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 30}, d.Timeframes)
	assert.Nil(t, d.SourceErrors)
	require.Len(t, d.Rows, 4)

	today := d.Rows[3]
	assert.Equal(t, "2024-01-04", today.Date)
	require.NotNil(t, today.OpenInterest)
	assert.Equal(t, 4000.0, *today.OpenInterest)
	require.NotNil(t, d.Rows[1].OpenInterest)
	assert.InDelta(t, 2000.0, *d.Rows[1].OpenInterest, 1e-9)

	require.NotNil(t, d.Summary)
	assert.Equal(t, "2024-01-04", d.Summary.Date)
	require.NotNil(t, d.Summary.LatestPrice)
	assert.Equal(t, 26.0, *d.Summary.LatestPrice)
	require.Len(t, d.Summary.Annualized, 2)
	assert.Equal(t, 2, d.Summary.Annualized[0].Timeframe)
	assert.InDelta(t, 365*(300.0+0)/2, d.Summary.Annualized[0].Value, 1e-9)
	assert.Equal(t, "$54.75K", d.Summary.Annualized[0].Display)
	assert.Equal(t, 4, m.rows)
}

func TestGetDashboard_DegradesNonRevenueSources(t *testing.T) {
	m := &recMetrics{}
	uc := NewDashboardUseCase(
		fakePrices{err: errors.New("coingecko 429")},
		threeDaysOfFees(),
		fakeArchive{err: errors.New("archive missing")},
		fakeLive{err: errors.New("hyperliquid down")},
		WithClock(clock),
		WithMetrics(m),
	)

	d, err := uc.GetDashboard(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 30}, d.Timeframes)
	require.Len(t, d.Rows, 3, "no live OI means no synthetic today row")
	for _, r := range d.Rows {
		assert.Nil(t, r.Price)
		assert.Nil(t, r.OpenInterest)
	}
	assert.Equal(t, map[string]string{
		SourcePrices:    "coingecko 429",
		SourceOIArchive: "archive missing",
		SourceLiveOI:    "hyperliquid down",
	}, d.SourceErrors)
	assert.ElementsMatch(t, []string{"fetch_prices", "fetch_oi_archive", "fetch_live_oi"}, m.errors)
}

func TestGetDashboard_RevenueFailureIsFatal(t *testing.T) {
	uc := NewDashboardUseCase(
		fakePrices{},
		&fakeFees{err: errors.New("llama timeout")},
		fakeArchive{},
		fakeLive{v: 1},
		WithClock(clock),
	)

	_, err := uc.GetDashboard(context.Background(), nil)
	require.ErrorIs(t, err, merger.ErrNoRevenueData)
	assert.Contains(t, err.Error(), "llama timeout")
}

func TestGetDashboard_EmptyRevenueIsFatal(t *testing.T) {
	uc := NewDashboardUseCase(fakePrices{}, &fakeFees{}, fakeArchive{}, fakeLive{v: 1}, WithClock(clock))

	_, err := uc.GetDashboard(context.Background(), []int{7})
	require.ErrorIs(t, err, merger.ErrNoRevenueData)
}

func TestGetDashboard_InvalidTimeframe(t *testing.T) {
	fees := threeDaysOfFees()
	uc := NewDashboardUseCase(fakePrices{}, fees, fakeArchive{}, fakeLive{}, WithClock(clock))

	_, err := uc.GetDashboard(context.Background(), []int{7, -1})
	require.ErrorIs(t, err, merger.ErrInvalidTimeframe)
	assert.Zero(t, fees.Calls(), "nothing is fetched for an invalid request")
}

func TestGetDashboard_PerSourceTimeout(t *testing.T) {
	uc := NewDashboardUseCase(
		fakePrices{},
		threeDaysOfFees(),
		fakeArchive{},
		fakeLive{block: true},
		WithClock(clock),
		WithFetchTimeout(50*time.Millisecond),
	)

	d, err := uc.GetDashboard(context.Background(), []int{7})
	require.NoError(t, err)
	assert.Contains(t, d.SourceErrors, SourceLiveOI)
	assert.Len(t, d.Rows, 3)
}

func TestGetDashboard_CachesByTimeframeSet(t *testing.T) {
	fees := threeDaysOfFees()
	m := &recMetrics{}
	c := cache.NewTTLCache()
	uc := NewDashboardUseCase(fakePrices{}, fees, fakeArchive{}, fakeLive{}, WithClock(clock), WithCache(c, time.Minute), WithMetrics(m))
	ctx := context.Background()

	first, err := uc.GetDashboard(ctx, []int{30, 7})
	require.NoError(t, err)
	second, err := uc.GetDashboard(ctx, []int{7, 30, 7})
	require.NoError(t, err)

	assert.Equal(t, 1, fees.Calls())
	assert.Equal(t, []string{"miss", "hit"}, m.cache)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Summary, second.Summary)

	_, err = uc.GetDashboard(ctx, []int{14})
	require.NoError(t, err)
	assert.Equal(t, 2, fees.Calls())
}

func TestRefresh_OverwritesCache(t *testing.T) {
	fees := threeDaysOfFees()
	c := cache.NewTTLCache()
	uc := NewDashboardUseCase(fakePrices{}, fees, fakeArchive{}, fakeLive{}, WithClock(clock), WithCache(c, 0))
	ctx := context.Background()

	_, err := uc.GetDashboard(ctx, nil)
	require.NoError(t, err)

	fees.mu.Lock()
	fees.pts = append(fees.pts, models.FeePoint{Timestamp: day0.AddDate(0, 0, 3).Unix(), DailyFees: 400})
	fees.mu.Unlock()

	refreshed, err := uc.Refresh(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, refreshed.Rows, 4)

	cached, err := uc.GetDashboard(ctx, []int{30, 7})
	require.NoError(t, err)
	assert.Len(t, cached.Rows, 4)
	assert.Equal(t, 2, fees.Calls())
}

func TestGetSummary(t *testing.T) {
	uc := NewDashboardUseCase(fakePrices{}, threeDaysOfFees(), fakeArchive{}, fakeLive{}, WithClock(clock))

	s, err := uc.GetSummary(context.Background(), []int{3})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", s.Date)
	assert.Nil(t, s.LatestPrice)
	require.Len(t, s.Annualized, 1)
	assert.InDelta(t, 73000.0, s.Annualized[0].Value, 1e-9)
	assert.Equal(t, "$73.00K", s.Annualized[0].Display)
}

func TestBuildSummary_LatestKnownValues(t *testing.T) {
	p, oi := 10.0, 500.0
	rows := []models.MergedRow{
		{Date: "2024-01-01", Price: &p, OpenInterest: &oi, Annualized: map[int]float64{7: 1}},
		{Date: "2024-01-02", Annualized: map[int]float64{7: 2_500_000}},
	}
	s := BuildSummary(rows, []int{7, 30}, day0)

	assert.Equal(t, "2024-01-02", s.Date)
	require.NotNil(t, s.LatestPrice)
	assert.Equal(t, 10.0, *s.LatestPrice)
	require.NotNil(t, s.LatestOpenInterest)
	assert.Equal(t, 500.0, *s.LatestOpenInterest)
	require.Len(t, s.Annualized, 1, "timeframes not computed are skipped")
	assert.Equal(t, "$2.50M", s.Annualized[0].Display)

	assert.Empty(t, BuildSummary(nil, []int{7}, day0).Date)
}
