package repository

import (
	"context"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
)

type messageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaSummaryPublisher emits one message per refreshed summary, keyed by its date.
type KafkaSummaryPublisher struct {
	producer messageProducer
	topic    string
}

// NewKafkaSummaryPublisher accepts a *pkg/kafka.Producer.
func NewKafkaSummaryPublisher(producer messageProducer, topic string) *KafkaSummaryPublisher {
	return &KafkaSummaryPublisher{producer: producer, topic: topic}
}

var (
	_ domrepo.SummaryPublisher = (*KafkaSummaryPublisher)(nil)
	_ domrepo.SummaryPublisher = NoopSummaryPublisher{}
)

func (p *KafkaSummaryPublisher) Publish(ctx context.Context, s *models.Summary) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Date), s)
}

func (p *KafkaSummaryPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSummaryPublisher is used when no brokers are configured.
type NoopSummaryPublisher struct{}

func (NoopSummaryPublisher) Publish(context.Context, *models.Summary) error { return nil }

func (NoopSummaryPublisher) Close() error { return nil }
