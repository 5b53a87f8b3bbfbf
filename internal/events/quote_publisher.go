package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/kafka"
)

const (
	// TopicLoyaltyEvents is the default topic for loyalty events.
	TopicLoyaltyEvents = "loyalty.events"

	// PointsQuoted is the CloudEvent type emitted after a successful quote.
	PointsQuoted = "loyalty.points.quoted"

	eventSource = "service-loyalty"
)

// QuotedEvent is the payload of a PointsQuoted event.
type QuotedEvent struct {
	FareAmount      string    `json:"fare_amount"`
	Currency        string    `json:"currency"`
	CabinClass      string    `json:"cabin_class"`
	CustomerTier    string    `json:"customer_tier"`
	PromoCode       string    `json:"promo_code,omitempty"`
	BasePoints      int       `json:"base_points"`
	TierBonus       int       `json:"tier_bonus"`
	PromoBonus      int       `json:"promo_bonus"`
	TotalPoints     int       `json:"total_points"`
	EffectiveFxRate float64   `json:"effective_fx_rate"`
	Warnings        []string  `json:"warnings"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// QuotePublisher publishes quote events to Kafka.
type QuotePublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// NewQuotePublisher creates a publisher writing to topic. An empty topic
// means TopicLoyaltyEvents.
func NewQuotePublisher(producer *kafka.Producer, topic string, logger *zap.Logger) *QuotePublisher {
	if topic == "" {
		topic = TopicLoyaltyEvents
	}
	return &QuotePublisher{producer: producer, topic: topic, logger: logger}
}

// PublishQuoted wraps evt in a CloudEvent and writes it to the topic.
func (p *QuotePublisher) PublishQuoted(ctx context.Context, evt QuotedEvent) error {
	ce, err := kafka.NewCloudEvent(eventSource, PointsQuoted, evt)
	if err != nil {
		return fmt.Errorf("failed to create cloud event: %w", err)
	}
	if err := p.producer.PublishEvent(ctx, p.topic, ce); err != nil {
		return err
	}

	p.logger.Debug("quote event published",
		zap.String("id", ce.ID),
		zap.Int("total_points", evt.TotalPoints),
	)
	return nil
}
