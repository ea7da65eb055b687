package merger

import "github.com/Fuel4us/hype-revenue/internal/domain/models"

// annualize stores the trailing average daily fee times 365 for every timeframe.
// Rows before a full window average over all rows seen so far.
func annualize(rows []models.MergedRow, timeframes []int) {
	prefix := make([]float64, len(rows)+1)
	for i, r := range rows {
		prefix[i+1] = prefix[i] + r.DailyFees
	}
	for idx := range rows {
		rows[idx].Annualized = make(map[int]float64, len(timeframes))
		for _, tf := range timeframes {
			from := idx - tf + 1
			if from < 0 {
				from = 0
			}
			n := idx - from + 1
			avg := (prefix[idx+1] - prefix[from]) / float64(n)
			rows[idx].Annualized[tf] = avg * daysPerYear
		}
	}
}
