package repository

import (
	"context"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
)

// PriceSource returns daily token prices for a trailing window.
type PriceSource interface {
	FetchPrices(ctx context.Context) ([]models.PricePoint, error)
}

// FeeSource returns the daily protocol fee history.
type FeeSource interface {
	FetchFees(ctx context.Context) ([]models.FeePoint, error)
}

// OpenInterestArchive returns the archived daily open interest history.
type OpenInterestArchive interface {
	History(ctx context.Context) ([]models.OpenInterestPoint, error)
	Name() string
}

// LiveOpenInterestSource returns the current aggregate notional open interest.
type LiveOpenInterestSource interface {
	FetchOpenInterest(ctx context.Context) (float64, error)
}

// SummaryPublisher fans dashboard summaries out to downstream consumers.
type SummaryPublisher interface {
	Publish(ctx context.Context, s *models.Summary) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordMergedRows(n int)
	RecordLiveOpenInterest(usd float64)
	RecordCache(result string)
}
