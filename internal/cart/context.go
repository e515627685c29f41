package cart

import (
	"context"
	"errors"
)

// ErrStoreNotProvided signals that the cart was accessed from a context that
// was never given a store. It is a wiring defect, not a runtime condition.
var ErrStoreNotProvided = errors.New("cart: store accessed outside of a context that provides it")

type storeKey struct{}

// WithStore returns a copy of ctx carrying s
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store carried by ctx
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrStoreNotProvided
	}
	return s, nil
}

// MustFromContext returns the store carried by ctx and panics with
// ErrStoreNotProvided when there is none.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
