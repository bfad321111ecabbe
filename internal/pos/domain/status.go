package domain

import "fmt"

// OrderStatus captures the lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusInPrep    OrderStatus = "in_prep"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []OrderStatus{StatusPending, StatusInPrep, StatusReady, StatusDelivered, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInPrep, StatusReady, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Editable reports whether line items may still change in this status.
func (s OrderStatus) Editable() bool {
	return s != StatusDelivered && s != StatusCancelled
}

// ParseOrderStatus converts raw input to a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
