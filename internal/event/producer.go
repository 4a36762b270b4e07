package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medigo/backend/internal/domain"
	pkgkafka "github.com/medigo/backend/pkg/kafka"
	"github.com/medigo/backend/pkg/logger"
)

// Topics this service publishes to.
var (
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
)

// Event types and aggregate names carried in the envelope.
const (
	EventCartUpdated    = "cart.updated"
	EventUserRegistered = "user.registered"

	AggregateTypeCart = "cart"
	AggregateTypeUser = "user"

	Source = "medigo-backend"
)

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	UserID    string            `json:"userId"`
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  string            `json:"subtotal"`
	UpdatedAt string            `json:"updatedAt"`
}

// UserRegisteredData is the payload of a user.registered event. The
// notification consumer uses it to send the welcome email.
type UserRegisteredData struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Type   string `json:"type"`
}

// Publisher is the Kafka side of the producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer turns domain changes into Kafka events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishCartUpdated publishes the full item list after a cart mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		UserID:    cart.UserID,
		Items:     cart.CloneItems(),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal().StringFixed(2),
		UpdatedAt: cart.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	return p.publish(ctx, TopicCartUpdated, EventCartUpdated, cart.UserID, AggregateTypeCart, data)
}

// PublishUserRegistered announces a new registration.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Type:   string(user.Type),
	}
	return p.publish(ctx, TopicUserRegistered, EventUserRegistered, user.ID, AggregateTypeUser, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
