package util

import "fmt"

// FormatUSDCompact renders a dollar amount the way the dashboard cards show it:
// $1.23M, $4.56K or $7.89.
func FormatUSDCompact(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.2fK", v/1_000)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
