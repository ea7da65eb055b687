package merger

import "github.com/Fuel4us/hype-revenue/internal/domain/models"

// fillOpenInterestGaps linearly interpolates open interest between known rows.
// Gaps before the first known value or after the last one stay nil.
func fillOpenInterestGaps(rows []models.MergedRow) {
	lastValid := -1
	for i := 0; i < len(rows); i++ {
		if rows[i].OpenInterest != nil {
			lastValid = i
			continue
		}
		if lastValid < 0 {
			continue
		}
		next := nextValid(rows, i+1)
		if next < 0 {
			return
		}
		start := *rows[lastValid].OpenInterest
		end := *rows[next].OpenInterest
		steps := float64(next - lastValid)
		for k := i; k < next; k++ {
			rows[k].OpenInterest = ptr(start + (end-start)*float64(k-lastValid)/steps)
		}
		lastValid = next
		i = next
	}
}

func nextValid(rows []models.MergedRow, from int) int {
	for j := from; j < len(rows); j++ {
		if rows[j].OpenInterest != nil {
			return j
		}
	}
	return -1
}
