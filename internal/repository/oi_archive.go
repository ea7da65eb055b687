package repository

import (
	"sort"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
	"github.com/Fuel4us/hype-revenue/pkg/util"
)

// sanitizeHistory drops entries whose date is not YYYY-MM-DD and orders the rest by date.
func sanitizeHistory(points []models.OpenInterestPoint, l *applogger.Logger, source string) []models.OpenInterestPoint {
	out := make([]models.OpenInterestPoint, 0, len(points))
	dropped := 0
	for _, p := range points {
		if _, err := util.ParseDay(p.Date); err != nil {
			dropped++
			continue
		}
		out = append(out, p)
	}
	if dropped > 0 && l != nil {
		l.Warn("oi archive: dropped malformed entries",
			applogger.String("source", source),
			applogger.Int("dropped", dropped),
		)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
