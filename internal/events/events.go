// Package events publishes domain events after the owning transaction has
// committed. Delivery is best effort: failures are logged and never reach the
// caller's response.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/local_store/pkg/logging"
)

const (
	TopicCart    = "cart_events"
	TopicPayment = "payment_events"
	TopicUser    = "user_events"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type CartEvent struct {
	Type       string          `json:"type"`
	UserID     uint            `json:"user_id"`
	CartID     uint            `json:"cart_id"`
	ItemID     uint            `json:"item_id"`
	ProductID  uint            `json:"product_id,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Price      decimal.Decimal `json:"price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type PaymentEvent struct {
	Type          string          `json:"type"`
	PaymentID     uint            `json:"payment_id"`
	UserID        *uint           `json:"user_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

func UserKey(id uint) string {
	return fmt.Sprintf("user-%d", id)
}

// Emit hands the event to the publisher and logs a refusal. It does not wait
// on the broker when p is the Async publisher New returns. The request context
// is detached because the response may already be on its way.
func Emit(ctx context.Context, p Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), topic, key, event); err != nil {
		logging.FromContext(ctx).Error("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error { return nil }

// New returns the publisher for the configured broker: "kafka", "amqp" or
// empty for none. Broker publishers are wrapped in Async.
func New(broker string, kafkaBrokers []string, amqpURL string, log *slog.Logger) (Publisher, error) {
	switch broker {
	case "":
		return Nop{}, nil
	case "kafka":
		if len(kafkaBrokers) == 0 {
			return nil, fmt.Errorf("events: KAFKA_BROKERS is empty")
		}
		return NewAsync(NewKafkaPublisher(kafkaBrokers), defaultQueueSize, publishTimeout), nil
	case "amqp":
		p, err := NewAMQPPublisher(amqpURL, log)
		if err != nil {
			return nil, err
		}
		return NewAsync(p, defaultQueueSize, publishTimeout), nil
	default:
		return nil, fmt.Errorf("events: unknown broker %q", broker)
	}
}
