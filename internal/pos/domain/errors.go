package domain

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures so callers can react without parsing messages.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindDuplicate          Kind = "duplicate"
	KindInvalidInput       Kind = "invalid_input"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindProductUnavailable Kind = "product_unavailable"
)

// Error is a domain failure with a machine-checkable kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrProductNotFound  = newError(KindNotFound, "product not found")
	ErrCustomerNotFound = newError(KindNotFound, "customer not found")
	ErrOrderNotFound    = newError(KindNotFound, "order not found")
	ErrLineItemNotFound = newError(KindNotFound, "line item not found in order")

	ErrDuplicateID = newError(KindDuplicate, "id already registered")

	ErrInvalidID       = newError(KindInvalidInput, "id must contain only letters and digits")
	ErrInvalidPrice    = newError(KindInvalidInput, "price must be greater than zero")
	ErrPricePrecision  = newError(KindInvalidInput, "price cannot have more than two decimal places")
	ErrInvalidStock    = newError(KindInvalidInput, "stock cannot be negative")
	ErrEmptyName       = newError(KindInvalidInput, "name cannot be empty")
	ErrInvalidPhone    = newError(KindInvalidInput, "phone must contain 8 to 15 digits")
	ErrInvalidStatus   = newError(KindInvalidInput, "unknown order status")
	ErrInvalidQuantity = newError(KindInvalidInput, "quantity must be greater than zero")
	ErrEmptyCart       = newError(KindInvalidInput, "cart is empty")
	ErrOrderLocked     = newError(KindInvalidInput, "order items cannot change once delivered or cancelled")

	ErrInsufficientStock  = newError(KindInsufficientStock, "insufficient stock")
	ErrProductUnavailable = newError(KindProductUnavailable, "product unavailable")
)

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) (Kind, bool) {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return KindInsufficientStock, true
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}

// StockError reports a quantity that exceeds what a product has in stock.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
	// Staged is the quantity already held in a cart for the product.
	Staged int
}

func (e *StockError) Error() string {
	if e.Staged > 0 {
		return fmt.Sprintf("insufficient stock for %q: available %d, already in cart %d, requested %d",
			e.ProductName, e.Available, e.Staged, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Shortfall is the number of units missing to satisfy the request.
func (e *StockError) Shortfall() int {
	return e.Staged + e.Requested - e.Available
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

func unavailable(p *Product) error {
	return fmt.Errorf("%w: %q", ErrProductUnavailable, p.Name)
}
