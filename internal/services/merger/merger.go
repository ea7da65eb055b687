// Package merger aligns the fee, price and open interest series onto one daily
// timeline and derives annualized revenue columns from it.
package merger

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	"github.com/Fuel4us/hype-revenue/pkg/util"
)

const daysPerYear = 365

var (
	// ErrNoRevenueData is returned when the fee series has no positive entry.
	ErrNoRevenueData = errors.New("no revenue data found")
	// ErrInvalidTimeframe is returned for a non-positive moving average window.
	ErrInvalidTimeframe = errors.New("timeframe must be a positive number of days")
)

// Merge builds the dashboard timeline. The fee series is the backbone: one row per
// distinct day with positive fees. liveOI, when non-nil and non-zero, is the open
// interest for today (UTC calendar day of now) and takes precedence over the archive.
// The inputs are not modified.
func Merge(
	prices []models.PricePoint,
	fees []models.FeePoint,
	oiHistory []models.OpenInterestPoint,
	liveOI *float64,
	timeframes []int,
	now time.Time,
) ([]models.MergedRow, error) {
	tfs, err := normalizeTimeframes(timeframes)
	if err != nil {
		return nil, err
	}

	today := util.DayKey(now)
	live, hasLive := liveValue(liveOI)

	priceByDate := make(map[string]float64, len(prices))
	for _, p := range prices {
		priceByDate[p.Date] = p.Price
	}
	oiByDate := make(map[string]float64, len(oiHistory)+1)
	for _, p := range oiHistory {
		oiByDate[p.Date] = p.TotalOpenInterest
	}
	if hasLive {
		if _, ok := oiByDate[today]; !ok {
			oiByDate[today] = live
		}
	}

	rows := buildBackbone(fees, priceByDate, oiByDate)
	if len(rows) == 0 {
		return nil, ErrNoRevenueData
	}

	if hasLive {
		rows = applyLive(rows, today, util.StartOfDay(now).Unix(), live, priceByDate)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })

	fillOpenInterestGaps(rows)
	annualize(rows, tfs)

	return rows, nil
}

// buildBackbone keeps positive fee days, collapsing duplicate dates to the last entry.
func buildBackbone(fees []models.FeePoint, priceByDate, oiByDate map[string]float64) []models.MergedRow {
	rows := make([]models.MergedRow, 0, len(fees))
	indexByDate := make(map[string]int, len(fees))
	for _, f := range fees {
		if !(f.DailyFees > 0) {
			continue
		}
		date := util.DayKeyFromUnix(f.Timestamp)
		row := models.MergedRow{
			Timestamp:    f.Timestamp,
			Date:         date,
			DailyFees:    f.DailyFees,
			Price:        lookup(priceByDate, date),
			OpenInterest: lookup(oiByDate, date),
		}
		if i, ok := indexByDate[date]; ok {
			rows[i] = row
			continue
		}
		indexByDate[date] = len(rows)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })
	return rows
}

// applyLive overwrites today's open interest or appends a zero-fee row for today.
func applyLive(rows []models.MergedRow, today string, todayStart int64, live float64, priceByDate map[string]float64) []models.MergedRow {
	last := &rows[len(rows)-1]
	if last.Date == today {
		last.OpenInterest = ptr(live)
		return rows
	}
	return append(rows, models.MergedRow{
		Timestamp:    todayStart,
		Date:         today,
		DailyFees:    0,
		Price:        lookup(priceByDate, today),
		OpenInterest: ptr(live),
	})
}

func normalizeTimeframes(timeframes []int) ([]int, error) {
	seen := make(map[int]struct{}, len(timeframes))
	out := make([]int, 0, len(timeframes))
	for _, tf := range timeframes {
		if tf <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidTimeframe, tf)
		}
		if _, ok := seen[tf]; ok {
			continue
		}
		seen[tf] = struct{}{}
		out = append(out, tf)
	}
	return out, nil
}

// liveValue treats nil, zero and NaN as "no live snapshot".
func liveValue(v *float64) (float64, bool) {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

func lookup(m map[string]float64, key string) *float64 {
	if v, ok := m[key]; ok {
		return ptr(v)
	}
	return nil
}

func ptr(v float64) *float64 { return &v }
