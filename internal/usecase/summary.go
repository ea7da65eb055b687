package usecase

import (
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	"github.com/Fuel4us/hype-revenue/pkg/util"
)

// BuildSummary reads the stat card values off the merged timeline: the last row's
// annualized figures and the most recent known price and open interest.
func BuildSummary(rows []models.MergedRow, timeframes []int, generatedAt time.Time) *models.Summary {
	s := &models.Summary{GeneratedAt: generatedAt}
	if len(rows) == 0 {
		return s
	}
	last := rows[len(rows)-1]
	s.Date = last.Date

	for i := len(rows) - 1; i >= 0 && (s.LatestPrice == nil || s.LatestOpenInterest == nil); i-- {
		if s.LatestPrice == nil && rows[i].Price != nil {
			v := *rows[i].Price
			s.LatestPrice = &v
		}
		if s.LatestOpenInterest == nil && rows[i].OpenInterest != nil {
			v := *rows[i].OpenInterest
			s.LatestOpenInterest = &v
		}
	}

	s.Annualized = make([]models.AnnualizedValue, 0, len(timeframes))
	for _, tf := range timeframes {
		v, ok := last.Annualized[tf]
		if !ok {
			continue
		}
		s.Annualized = append(s.Annualized, models.AnnualizedValue{
			Timeframe: tf,
			Value:     v,
			Display:   util.FormatUSDCompact(v),
		})
	}
	return s
}
