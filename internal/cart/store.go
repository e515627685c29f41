// Package cart owns the shopper's cart: the ordered line items, the derived
// total, and the round trip of both through a durable slot.
//
// A Store is created once per session and shared by every surface that shows
// the cart. It starts empty and write-ineligible; Rehydrate loads the previous
// snapshot and from then on every effective mutation overwrites the slot with
// the full item list.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cart-service/internal/models"
	"cart-service/internal/slot"
	"cart-service/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultKey is the slot key the cart snapshot is stored under
const DefaultKey = "cart"

// ErrInvalidItem is returned by AddItem for candidates that would break the
// line item invariants (missing id, quantity below one, negative price)
var ErrInvalidItem = errors.New("cart: invalid line item")

// Slot is the durable key-value storage the store persists to
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Snapshot is an immutable view of the cart at one point in time
type Snapshot struct {
	Items []models.CartItem
	Total decimal.Decimal
	Count int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store is the single owner and mutator of the cart state
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	slot     Slot
	key      string
	logger   *zap.Logger
	validate *validator.Validate

	items    []models.CartItem
	hydrated bool
	dirty    bool

	subs      []subscriber
	nextSub   int
	seq       uint64
	delivered uint64
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides the slot key
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger overrides the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store that has not been rehydrated yet. Mutations are
// kept in memory only until Rehydrate completes.
func New(kv Slot, opts ...Option) *Store {
	s := &Store{
		slot:     kv,
		key:      DefaultKey,
		logger:   util.GetLogger(),
		validate: validator.New(),
		items:    []models.CartItem{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store and rehydrates it from the slot
func Open(ctx context.Context, kv Slot, opts ...Option) (*Store, error) {
	s := New(kv, opts...)
	if err := s.Rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Rehydrate loads the persisted snapshot and makes the store write-eligible.
// A missing or malformed snapshot yields an empty cart. A failed read is
// returned and leaves the store write-ineligible, so it can be retried without
// overwriting a snapshot it never saw. Calling it again after success is a no-op.
func (s *Store) Rehydrate(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "CartStore.Rehydrate")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}

	outcome := "restored"
	payload, err := s.slot.Get(ctx, s.key)
	switch {
	case errors.Is(err, slot.ErrNotFound):
		outcome = "empty"
	case err != nil:
		s.mu.Unlock()
		util.CartRehydrationsTotal.WithLabelValues("read_error").Inc()
		s.logger.Error("Failed to read persisted cart, staying write-ineligible",
			zap.String("key", s.key),
			zap.Error(err))
		return fmt.Errorf("failed to read persisted cart: %w", err)
	default:
		items, decodeErr := decodeItems(payload)
		if decodeErr != nil {
			outcome = "malformed"
			s.logger.Warn("Discarding malformed persisted cart",
				zap.String("key", s.key),
				zap.Error(decodeErr))
			break
		}
		s.items = items
	}

	s.hydrated = true
	util.CartRehydrationsTotal.WithLabelValues(outcome).Inc()

	// Items added before the snapshot was read survive only if nothing was restored.
	if s.dirty && outcome != "restored" {
		s.persistLocked(ctx)
	}
	s.dirty = false

	s.logger.Info("Cart rehydrated",
		zap.String("key", s.key),
		zap.String("outcome", outcome),
		zap.Int("items", len(s.items)))

	s.publishLocked()
	return nil
}

// Hydrated reports whether the initial read has completed
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// AddItem adds a line item, merging it into an existing line with the same
// product, size and color. The existing line keeps its id and display fields.
func (s *Store) AddItem(ctx context.Context, item models.CartItem) error {
	ctx, span := util.StartSpan(ctx, "CartStore.AddItem")
	defer span.End()

	if err := s.validate.Struct(item); err != nil {
		util.CartItemsRejectedTotal.Inc()
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	s.mu.Lock()
	s.items = mergeItem(s.items, item)
	s.commitLocked(ctx, "add")
	return nil
}

// RemoveItem removes the line item with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CartStore.RemoveItem")
	defer span.End()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	items := make([]models.CartItem, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	s.items = append(items, s.items[idx+1:]...)
	s.commitLocked(ctx, "remove")
	return nil
}

// UpdateQuantity sets the quantity of a line item. A quantity of zero or less
// removes the item. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, id)
	}

	ctx, span := util.StartSpan(ctx, "CartStore.UpdateQuantity")
	defer span.End()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	items := append([]models.CartItem(nil), s.items...)
	items[idx].Quantity = quantity
	s.items = items
	s.commitLocked(ctx, "update")
	return nil
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "CartStore.ClearCart")
	defer span.End()

	s.mu.Lock()
	s.items = []models.CartItem{}
	s.commitLocked(ctx, "clear")
	return nil
}

// RemoveOrdered takes the ordered units out of the cart. Each ordered line
// lowers the quantity of the line with the same id and removes it when nothing
// is left. Lines that were not ordered stay untouched.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []models.CartItem) error {
	ctx, span := util.StartSpan(ctx, "CartStore.RemoveOrdered")
	defer span.End()

	taken := make(map[string]int, len(ordered))
	for _, item := range ordered {
		taken[item.ID] += item.Quantity
	}

	s.mu.Lock()
	changed := false
	items := make([]models.CartItem, 0, len(s.items))
	for _, item := range s.items {
		q, ok := taken[item.ID]
		if !ok || q <= 0 {
			items = append(items, item)
			continue
		}
		changed = true
		if item.Quantity > q {
			item.Quantity -= q
			items = append(items, item)
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}

	s.items = items
	s.commitLocked(ctx, "checkout")
	return nil
}

// Items returns a copy of the line items in display order
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Total returns the sum of price times quantity over all line items
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.items)
}

// Count returns the number of units in the cart
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.items)
}

// Snapshot returns the current items with their derived values
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive the full snapshot after every effective
// mutation and after rehydration. Callbacks run in subscription order on the
// mutating goroutine and may read the store but must not mutate it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Total sums price times quantity over items
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// commitLocked persists and notifies after a mutation. It must be called with
// s.mu held and releases it.
func (s *Store) commitLocked(ctx context.Context, op string) {
	util.CartMutationsTotal.WithLabelValues(op).Inc()
	util.CartLineItems.Set(float64(len(s.items)))

	if s.hydrated {
		s.persistLocked(ctx)
	} else {
		s.dirty = true
	}

	s.publishLocked()
}

// publishLocked hands the current snapshot to subscribers. It must be called
// with s.mu held and releases it. A snapshot overtaken by a newer delivery is
// dropped, so subscribers never observe state going backwards.
func (s *Store) publishLocked() {
	s.seq++
	seq := s.seq
	snap := s.snapshotLocked()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	payload, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("Failed to encode cart", zap.Error(err))
		util.CartPersistFailuresTotal.Inc()
		return
	}

	start := time.Now()
	err = s.slot.Set(ctx, s.key, payload)
	util.CartPersistLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		util.CartPersistFailuresTotal.Inc()
		s.logger.Error("Failed to persist cart, keeping in-memory state",
			zap.String("key", s.key),
			zap.Int("items", len(s.items)),
			zap.Error(err))
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items: copyItems(s.items),
		Total: Total(s.items),
		Count: count(s.items),
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// mergeItem returns items with item merged in by variant key, or appended
func mergeItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	key := item.Key()
	for i := range items {
		if items[i].Key() == key {
			merged := append([]models.CartItem(nil), items...)
			merged[i].Quantity += item.Quantity
			return merged
		}
	}

	out := make([]models.CartItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// decodeItems parses a persisted snapshot. Entries without an id or with a
// non-positive quantity are dropped and duplicate variants are merged.
func decodeItems(payload []byte) ([]models.CartItem, error) {
	var raw []models.CartItem
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(raw))
	for _, item := range raw {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		items = mergeItem(items, item)
	}
	return items, nil
}

func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}

func count(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
