package models

import "time"

// Event types
const (
	EventTypeCartUpdated = "CART_UPDATED"
	EventTypeOrderPlaced = "ORDER_PLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartUpdatedEvent published after every effective cart mutation
type CartUpdatedEvent struct {
	BaseEvent
	CartKey string     `json:"cart_key"`
	Items   []CartItem `json:"items"`
	Total   string     `json:"total"`
	Count   int        `json:"count"`
}

// OrderPlacedEvent published when the simulated checkout completes
type OrderPlacedEvent struct {
	BaseEvent
	CartKey  string     `json:"cart_key"`
	OrderRef string     `json:"order_ref"`
	Items    []CartItem `json:"items"`
	Subtotal string     `json:"subtotal"`
	Shipping string     `json:"shipping"`
	Tax      string     `json:"tax"`
	Total    string     `json:"total"`
}
