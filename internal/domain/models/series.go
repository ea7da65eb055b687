package models

import (
	"encoding/json"
	"strconv"
)

// PricePoint is one daily HYPE price sample keyed by UTC calendar day.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
}

// FeePoint is one day of protocol fees as reported by the revenue feed.
type FeePoint struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds
	DailyFees float64 `json:"dailyFees"`
}

// OpenInterestPoint is one day of aggregate notional open interest in USD.
type OpenInterestPoint struct {
	Date              string  `json:"date"`
	TotalOpenInterest float64 `json:"total_oi"`
}

// MergedRow is a single day on the dashboard timeline.
// Price and OpenInterest are nil when no source covers the date.
type MergedRow struct {
	Timestamp    int64
	Date         string
	DailyFees    float64
	Price        *float64
	OpenInterest *float64
	Annualized   map[int]float64 // timeframe in days -> annualized revenue
}

// AnnualizedKey returns the JSON column name used for a timeframe.
func AnnualizedKey(tf int) string {
	return "annualized_" + strconv.Itoa(tf) + "d"
}

// MarshalJSON flattens the annualized columns so charting code can address them directly.
func (r MergedRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, 5+len(r.Annualized))
	m["timestamp"] = r.Timestamp
	m["date"] = r.Date
	m["dailyFees"] = r.DailyFees
	m["price"] = r.Price
	m["openInterest"] = r.OpenInterest
	for tf, v := range r.Annualized {
		m[AnnualizedKey(tf)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON; it is used when rows come back from cache.
func (r *MergedRow) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out MergedRow
	for k, v := range raw {
		var err error
		switch k {
		case "timestamp":
			err = json.Unmarshal(v, &out.Timestamp)
		case "date":
			err = json.Unmarshal(v, &out.Date)
		case "dailyFees":
			err = json.Unmarshal(v, &out.DailyFees)
		case "price":
			err = json.Unmarshal(v, &out.Price)
		case "openInterest":
			err = json.Unmarshal(v, &out.OpenInterest)
		default:
			tf, ok := parseAnnualizedKey(k)
			if !ok {
				continue
			}
			var f float64
			if err = json.Unmarshal(v, &f); err == nil {
				if out.Annualized == nil {
					out.Annualized = make(map[int]float64)
				}
				out.Annualized[tf] = f
			}
		}
		if err != nil {
			return err
		}
	}
	*r = out
	return nil
}

func parseAnnualizedKey(k string) (int, bool) {
	const prefix = "annualized_"
	if len(k) <= len(prefix)+1 || k[:len(prefix)] != prefix || k[len(k)-1] != 'd' {
		return 0, false
	}
	tf, err := strconv.Atoi(k[len(prefix) : len(k)-1])
	if err != nil || tf <= 0 {
		return 0, false
	}
	return tf, true
}
