package worker

import (
	"context"
	"sync"
	"time"

	"cart-service/internal/broker"
	"cart-service/internal/cart"
	"cart-service/internal/models"
	"cart-service/internal/util"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// CartEventWorker relays cart snapshots to the event publisher off the
// mutating goroutine, preserving mutation order.
type CartEventWorker struct {
	publisher broker.Publisher
	cartKey   string
	events    chan *models.CartUpdatedEvent
	logger    *zap.Logger

	mu     sync.Mutex
	detach func()
}

// NewCartEventWorker creates a new cart event worker. buffer bounds the
// number of snapshots waiting to be published; extra snapshots are dropped.
func NewCartEventWorker(publisher broker.Publisher, cartKey string, buffer int) *CartEventWorker {
	if buffer < 1 {
		buffer = 1
	}
	return &CartEventWorker{
		publisher: publisher,
		cartKey:   cartKey,
		events:    make(chan *models.CartUpdatedEvent, buffer),
		logger:    util.GetLogger(),
	}
}

// Attach subscribes the worker to store notifications
func (w *CartEventWorker) Attach(store *cart.Store) {
	unsubscribe := store.Subscribe(w.enqueue)

	w.mu.Lock()
	w.detach = unsubscribe
	w.mu.Unlock()
}

func (w *CartEventWorker) enqueue(snap cart.Snapshot) {
	event := broker.NewCartUpdatedEvent(w.cartKey, snap)
	select {
	case w.events <- event:
	default:
		util.EventsPublishFailedTotal.WithLabelValues(models.EventTypeCartUpdated).Inc()
		w.logger.Warn("Cart event buffer full, dropping snapshot",
			zap.String("event_id", event.EventID),
			zap.Int("items", len(event.Items)))
	}
}

// Start publishes queued events until ctx is cancelled
func (w *CartEventWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cart event worker", zap.String("cart_key", w.cartKey))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Cart event worker context cancelled, stopping...")
			return ctx.Err()
		case event := <-w.events:
			w.publish(ctx, event)
		}
	}
}

func (w *CartEventWorker) publish(ctx context.Context, event *models.CartUpdatedEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := w.publisher.PublishCartUpdated(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		w.logger.Error("Failed to publish CartUpdated event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}

// Stop detaches the worker from the store
func (w *CartEventWorker) Stop() error {
	w.logger.Info("Stopping cart event worker...")

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detach != nil {
		w.detach()
		w.detach = nil
	}
	return nil
}
