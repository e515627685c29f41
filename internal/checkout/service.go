package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"cart-service/internal/broker"
	"cart-service/internal/cart"
	"cart-service/internal/models"
	"cart-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrCheckoutInProgress = errors.New("checkout: an order is already being placed")
)

// Confirmation describes a placed order
type Confirmation struct {
	OrderRef string
	Items    []models.CartItem
	Summary  Summary
	PlacedAt time.Time
}

// Service places simulated orders. There is no payment or inventory step:
// placing an order waits for the configured delay and clears the cart.
type Service struct {
	publisher  broker.Publisher
	cartKey    string
	delay      time.Duration
	processing atomic.Bool
	logger     *zap.Logger
}

// NewService creates a new checkout service
func NewService(publisher broker.Publisher, cartKey string, delay time.Duration) *Service {
	if publisher == nil {
		publisher = broker.NoopPublisher{}
	}
	return &Service{
		publisher: publisher,
		cartKey:   cartKey,
		delay:     delay,
		logger:    util.GetLogger(),
	}
}

// PlaceOrder completes checkout for the current contents of store
func (s *Service) PlaceOrder(ctx context.Context, store *cart.Store) (*Confirmation, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	if !s.processing.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer s.processing.Store(false)

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}
	summary := Summarize(snap)

	s.logger.Info("Processing order",
		zap.Int("items", len(snap.Items)),
		zap.String("total", summary.Total.StringFixed(2)))

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Warn("Checkout cancelled", zap.Error(ctx.Err()))
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	confirmation := &Confirmation{
		OrderRef: uuid.New().String(),
		Items:    snap.Items,
		Summary:  summary,
		PlacedAt: time.Now(),
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderPlaced),
		CartKey:   s.cartKey,
		OrderRef:  confirmation.OrderRef,
		Items:     snap.Items,
		Subtotal:  summary.Subtotal.StringFixed(2),
		Shipping:  summary.Shipping.StringFixed(2),
		Tax:       summary.Tax.StringFixed(2),
		Total:     summary.Total.StringFixed(2),
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(event.EventType).Inc()
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	// Lines added while the order was processing are not part of it and stay.
	if err := store.RemoveOrdered(ctx, snap.Items); err != nil {
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed", zap.String("order_ref", confirmation.OrderRef))

	return confirmation, nil
}
