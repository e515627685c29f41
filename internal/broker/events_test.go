package broker

import (
	"context"
	"testing"

	"cart-service/internal/cart"
	"cart-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	keys   []string
	events []interface{}
}

func (f *fakeWriter) PublishEvent(_ context.Context, key string, event interface{}) error {
	f.keys = append(f.keys, key)
	f.events = append(f.events, event)
	return nil
}

func TestEventPublisherKeysByCart(t *testing.T) {
	w := &fakeWriter{}
	ep := &EventPublisher{producer: w}
	ctx := context.Background()

	require.NoError(t, ep.PublishCartUpdated(ctx, &models.CartUpdatedEvent{CartKey: "cart"}))
	require.NoError(t, ep.PublishOrderPlaced(ctx, &models.OrderPlacedEvent{CartKey: "guest"}))

	assert.Equal(t, []string{"cart", "guest"}, w.keys)
	assert.IsType(t, &models.CartUpdatedEvent{}, w.events[0])
	assert.IsType(t, &models.OrderPlacedEvent{}, w.events[1])
}

func TestNewCartUpdatedEvent(t *testing.T) {
	snap := cart.Snapshot{
		Items: []models.CartItem{{ID: "a", ProductID: 1, Price: 50, Quantity: 2}},
		Total: decimal.NewFromInt(100),
		Count: 2,
	}

	event := NewCartUpdatedEvent("cart", snap)

	assert.Equal(t, models.EventTypeCartUpdated, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "100.00", event.Total)
	assert.Equal(t, 2, event.Count)
	assert.Len(t, event.Items, 1)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}

	assert.NoError(t, p.PublishCartUpdated(context.Background(), &models.CartUpdatedEvent{}))
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), &models.OrderPlacedEvent{}))
}
