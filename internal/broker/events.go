package broker

import (
	"context"
	"time"

	"cart-service/internal/cart"
	"cart-service/internal/models"

	"github.com/google/uuid"
)

// Publisher publishes storefront domain events
type Publisher interface {
	PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

type eventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer eventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCartUpdated publishes CartUpdated event
func (ep *EventPublisher) PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	return ep.producer.PublishEvent(ctx, event.CartKey, event)
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, event.CartKey, event)
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCartUpdated(context.Context, *models.CartUpdatedEvent) error { return nil }

func (NoopPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error { return nil }

// NewBaseEvent stamps a new event of the given type
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// NewCartUpdatedEvent builds the event describing a cart snapshot
func NewCartUpdatedEvent(cartKey string, snap cart.Snapshot) *models.CartUpdatedEvent {
	return &models.CartUpdatedEvent{
		BaseEvent: NewBaseEvent(models.EventTypeCartUpdated),
		CartKey:   cartKey,
		Items:     snap.Items,
		Total:     snap.Total.StringFixed(2),
		Count:     snap.Count,
	}
}
