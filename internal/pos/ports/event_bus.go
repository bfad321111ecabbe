package ports

import (
	"context"
	"time"
)

type EventType string

const (
	EventProductChanged     EventType = "product.changed"
	EventCustomerChanged    EventType = "customer.changed"
	EventOrderCreated       EventType = "order.created"
	EventOrderUpdated       EventType = "order.updated"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventStockChanged       EventType = "stock.changed"
)

// Event describes a committed state change.
type Event struct {
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// EventBus defines the contract for publishing change events.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
}
