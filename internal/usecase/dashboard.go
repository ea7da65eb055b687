package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	"github.com/Fuel4us/hype-revenue/internal/service/cache"
	"github.com/Fuel4us/hype-revenue/internal/services/merger"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

// Source names used in Dashboard.SourceErrors and metrics labels.
const (
	SourcePrices    = "prices"
	SourceFees      = "fees"
	SourceOIArchive = "oi_archive"
	SourceLiveOI    = "live_oi"
)

const (
	cacheKeyPrefix      = "dashboard:"
	defaultFetchTimeout = 20 * time.Second
)

// DashboardUseCase fetches every upstream series concurrently and merges them.
type DashboardUseCase struct {
	prices  domrepo.PriceSource
	fees    domrepo.FeeSource
	archive domrepo.OpenInterestArchive
	live    domrepo.LiveOpenInterestSource

	cache        cache.BytesCache
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	defaultTFs   []int
	metrics      domrepo.Metrics
	l            *applogger.Logger
	now          func() time.Time
}

type DashboardOption func(*DashboardUseCase)

func NewDashboardUseCase(
	prices domrepo.PriceSource,
	fees domrepo.FeeSource,
	archive domrepo.OpenInterestArchive,
	live domrepo.LiveOpenInterestSource,
	opts ...DashboardOption,
) *DashboardUseCase {
	uc := &DashboardUseCase{
		prices:       prices,
		fees:         fees,
		archive:      archive,
		live:         live,
		fetchTimeout: defaultFetchTimeout,
		defaultTFs:   []int{7, 30},
		metrics:      noopMetrics{},
		l:            applogger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// WithCache enables result caching; ttl <= 0 keeps entries until the next Refresh.
func WithCache(c cache.BytesCache, ttl time.Duration) DashboardOption {
	return func(uc *DashboardUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

// WithFetchTimeout bounds each upstream fetch individually.
func WithFetchTimeout(d time.Duration) DashboardOption {
	return func(uc *DashboardUseCase) { uc.fetchTimeout = d }
}

// WithDefaultTimeframes is used when a caller passes no timeframes.
func WithDefaultTimeframes(tfs []int) DashboardOption {
	return func(uc *DashboardUseCase) { uc.defaultTFs = tfs }
}

func WithMetrics(m domrepo.Metrics) DashboardOption {
	return func(uc *DashboardUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

func WithLogger(l *applogger.Logger) DashboardOption {
	return func(uc *DashboardUseCase) {
		if l != nil {
			uc.l = l
		}
	}
}

// WithClock overrides the clock that decides which UTC day is "today".
func WithClock(now func() time.Time) DashboardOption {
	return func(uc *DashboardUseCase) { uc.now = now }
}

// DefaultTimeframes returns a copy of the configured default timeframes.
func (uc *DashboardUseCase) DefaultTimeframes() []int {
	return append([]int(nil), uc.defaultTFs...)
}

// GetDashboard returns the cached dashboard for timeframes or builds it.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, timeframes []int) (*models.Dashboard, error) {
	tfs, err := uc.normalize(timeframes)
	if err != nil {
		return nil, err
	}
	key := cacheKey(tfs)

	if d, ok := uc.fromCache(ctx, key); ok {
		return d, nil
	}

	d, err := uc.build(ctx, tfs)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, key, d)
	return d, nil
}

// Refresh rebuilds the dashboard unconditionally and overwrites the cached copy.
func (uc *DashboardUseCase) Refresh(ctx context.Context, timeframes []int) (*models.Dashboard, error) {
	tfs, err := uc.normalize(timeframes)
	if err != nil {
		return nil, err
	}
	d, err := uc.build(ctx, tfs)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, cacheKey(tfs), d)
	return d, nil
}

// GetSummary returns only the headline numbers of the dashboard for timeframes.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, timeframes []int) (*models.Summary, error) {
	d, err := uc.GetDashboard(ctx, timeframes)
	if err != nil {
		return nil, err
	}
	return d.Summary, nil
}

type fetchResult struct {
	source string
	val    interface{}
	err    error
	took   time.Duration
}

func (uc *DashboardUseCase) build(ctx context.Context, tfs []int) (*models.Dashboard, error) {
	start := time.Now()
	now := uc.now()

	ch := make(chan fetchResult, 4)
	var wg sync.WaitGroup
	run := func(source string, fn func(context.Context) (interface{}, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, uc.fetchTimeout)
			defer cancel()
			t0 := time.Now()
			v, err := fn(fctx)
			ch <- fetchResult{source: source, val: v, err: err, took: time.Since(t0)}
		}()
	}

	run(SourcePrices, func(ctx context.Context) (interface{}, error) { return uc.prices.FetchPrices(ctx) })
	run(SourceFees, func(ctx context.Context) (interface{}, error) { return uc.fees.FetchFees(ctx) })
	run(SourceOIArchive, func(ctx context.Context) (interface{}, error) { return uc.archive.History(ctx) })
	run(SourceLiveOI, func(ctx context.Context) (interface{}, error) { return uc.live.FetchOpenInterest(ctx) })

	go func() { wg.Wait(); close(ch) }()

	var (
		prices    []models.PricePoint
		fees      []models.FeePoint
		oiHistory []models.OpenInterestPoint
		liveOI    *float64
		feeErr    error
	)
	sourceErrors := map[string]string{}

	for r := range ch {
		uc.metrics.RecordLatency("fetch_"+r.source, r.took.Seconds())
		if r.err != nil {
			uc.metrics.RecordError("fetch_" + r.source)
			sourceErrors[r.source] = r.err.Error()
			if r.source == SourceFees {
				feeErr = r.err
				continue
			}
			uc.l.Warn("dashboard: source degraded to empty",
				applogger.String("source", r.source),
				applogger.Duration("took_ms", r.took),
				applogger.Error(r.err),
			)
			continue
		}
		switch r.source {
		case SourcePrices:
			prices = r.val.([]models.PricePoint)
		case SourceFees:
			fees = r.val.([]models.FeePoint)
		case SourceOIArchive:
			oiHistory = r.val.([]models.OpenInterestPoint)
		case SourceLiveOI:
			v := r.val.(float64)
			liveOI = &v
			uc.metrics.RecordLiveOpenInterest(v)
		}
	}

	if feeErr != nil {
		uc.l.Error("dashboard: revenue fetch failed", applogger.Error(feeErr))
		return nil, fmt.Errorf("%w: %w", merger.ErrNoRevenueData, feeErr)
	}

	rows, err := merger.Merge(prices, fees, oiHistory, liveOI, tfs, now)
	if err != nil {
		uc.metrics.RecordError("merge")
		uc.l.Error("dashboard: merge failed",
			applogger.Int("fee_points", len(fees)),
			applogger.Error(err),
		)
		return nil, err
	}

	uc.metrics.RecordMergedRows(len(rows))
	uc.metrics.RecordLatency("build_dashboard", time.Since(start).Seconds())

	d := &models.Dashboard{
		Timeframes:  tfs,
		GeneratedAt: now.UTC(),
		Rows:        rows,
		Summary:     BuildSummary(rows, tfs, now.UTC()),
	}
	if len(sourceErrors) > 0 {
		d.SourceErrors = sourceErrors
	}

	uc.l.Info("dashboard built",
		applogger.Ints("timeframes", tfs),
		applogger.Int("rows", len(rows)),
		applogger.Int("degraded_sources", len(sourceErrors)),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return d, nil
}

// normalize applies defaults and returns a sorted, de-duplicated copy.
func (uc *DashboardUseCase) normalize(timeframes []int) ([]int, error) {
	if len(timeframes) == 0 {
		timeframes = uc.defaultTFs
	}
	seen := make(map[int]struct{}, len(timeframes))
	out := make([]int, 0, len(timeframes))
	for _, tf := range timeframes {
		if tf <= 0 {
			return nil, fmt.Errorf("%w: %d", merger.ErrInvalidTimeframe, tf)
		}
		if _, ok := seen[tf]; ok {
			continue
		}
		seen[tf] = struct{}{}
		out = append(out, tf)
	}
	sort.Ints(out)
	return out, nil
}

func cacheKey(tfs []int) string {
	parts := make([]string, len(tfs))
	for i, tf := range tfs {
		parts[i] = strconv.Itoa(tf)
	}
	return cacheKeyPrefix + strings.Join(parts, ",")
}

func (uc *DashboardUseCase) fromCache(ctx context.Context, key string) (*models.Dashboard, bool) {
	if uc.cache == nil {
		return nil, false
	}
	b, ok, err := uc.cache.GetBytes(ctx, key)
	if err != nil {
		uc.metrics.RecordCache("error")
		uc.l.Warn("dashboard cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	if !ok {
		uc.metrics.RecordCache("miss")
		return nil, false
	}
	var d models.Dashboard
	if err := json.Unmarshal(b, &d); err != nil {
		uc.metrics.RecordCache("error")
		uc.l.Warn("dashboard cache entry corrupt", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}
	uc.metrics.RecordCache("hit")
	return &d, true
}

func (uc *DashboardUseCase) toCache(ctx context.Context, key string, d *models.Dashboard) {
	if uc.cache == nil {
		return
	}
	b, err := json.Marshal(d)
	if err != nil {
		uc.l.Warn("dashboard cache encode failed", applogger.String("key", key), applogger.Error(err))
		return
	}
	if err := uc.cache.SetBytes(ctx, key, b, uc.cacheTTL); err != nil {
		uc.metrics.RecordCache("error")
		uc.l.Warn("dashboard cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordError(string) {}
func (noopMetrics) RecordLatency(string, float64) {}
func (noopMetrics) RecordMergedRows(int) {}
func (noopMetrics) RecordLiveOpenInterest(float64) {}
func (noopMetrics) RecordCache(string) {}
