package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product and quantity within an order.
type LineItem struct {
	product  *Product
	quantity int
	subtotal decimal.Decimal
}

func (l LineItem) ProductID() string { return l.product.ID }
func (l LineItem) ProductName() string { return l.product.Name }
func (l LineItem) Quantity() int { return l.quantity }
func (l LineItem) Subtotal() decimal.Decimal { return l.subtotal }
func (l LineItem) UnitPrice() decimal.Decimal { return l.product.Price }

func (l *LineItem) setQuantity(quantity int) {
	l.quantity = quantity
	l.subtotal = l.product.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Order is a customer's committed set of line items with a lifecycle status.
// Its total always equals the sum of its line subtotals.
type Order struct {
	id             string
	customerID     string
	lines          []*LineItem
	status         OrderStatus
	createdAt      time.Time
	total          decimal.Decimal
	stockCommitted bool
}

func newOrder(id, customerID string, createdAt time.Time) *Order {
	return &Order{
		id:         id,
		customerID: customerID,
		status:     StatusPending,
		createdAt:  createdAt,
		total:      decimal.Zero,
	}
}

func (o *Order) ID() string { return o.id }
func (o *Order) CustomerID() string { return o.customerID }
func (o *Order) Status() OrderStatus { return o.status }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) Total() decimal.Decimal { return o.total }
func (o *Order) StockCommitted() bool { return o.stockCommitted }
func (o *Order) IsEmpty() bool { return len(o.lines) == 0 }

// Lines returns copies of the line items in insertion order.
func (o *Order) Lines() []LineItem {
	out := make([]LineItem, len(o.lines))
	for i, l := range o.lines {
		out[i] = *l
	}
	return out
}

// AddLineItem validates quantity, availability and stock, then merges into an existing line for the
// product or appends a new one. Catalog stock is only checked, never consumed here.
func (o *Order) AddLineItem(p *Product, quantity int) error {
	if !o.status.Editable() {
		return fmt.Errorf("%w: order %s is %s", ErrOrderLocked, o.id, o.status)
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Available || p.Removed {
		return unavailable(p)
	}

	existing := o.line(p.ID)
	already := 0
	if existing != nil {
		already = existing.quantity
	}
	if p.Stock < already+quantity {
		return &StockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   already + quantity,
		}
	}

	if existing != nil {
		o.total = o.total.Sub(existing.subtotal)
		existing.setQuantity(already + quantity)
		o.total = o.total.Add(existing.subtotal)
		return nil
	}

	line := &LineItem{product: p}
	line.setQuantity(quantity)
	o.lines = append(o.lines, line)
	o.total = o.total.Add(line.subtotal)
	return nil
}

// RemoveLineItem drops the line for productID. It reports false when no such line exists.
func (o *Order) RemoveLineItem(productID string) (bool, error) {
	if !o.status.Editable() {
		return false, fmt.Errorf("%w: order %s is %s", ErrOrderLocked, o.id, o.status)
	}
	for i, l := range o.lines {
		if l.product.ID == productID {
			o.lines = append(o.lines[:i], o.lines[i+1:]...)
			o.total = o.total.Sub(l.subtotal)
			return true, nil
		}
	}
	return false, nil
}

// SetStatus records a new status. Moving to delivered must go through OrderBook.SetStatus,
// which commits stock first; until then the order refuses it.
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status == StatusDelivered && !o.stockCommitted {
		return fmt.Errorf("%w: order %s has not committed its stock", ErrInvalidStatus, o.id)
	}
	o.status = status
	return nil
}

func (o *Order) line(productID string) *LineItem {
	for _, l := range o.lines {
		if l.product.ID == productID {
			return l
		}
	}
	return nil
}

// RestoredLine is a persisted line item resolved against the catalog.
type RestoredLine struct {
	Product  *Product
	Quantity int
	Subtotal decimal.Decimal
}

// OrderState is the persisted form of an order used to rebuild it at load time.
type OrderState struct {
	ID             string
	CustomerID     string
	Status         OrderStatus
	CreatedAt      time.Time
	Total          decimal.Decimal
	StockCommitted bool
	Lines          []RestoredLine
}

// RestoreOrder rebuilds an order from persisted state. The total is taken as stored, even when lines
// were dropped because their products no longer resolve.
func RestoreOrder(state OrderState) (*Order, error) {
	if !state.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, state.Status)
	}
	o := &Order{
		id:             state.ID,
		customerID:     state.CustomerID,
		status:         state.Status,
		createdAt:      state.CreatedAt,
		total:          state.Total,
		stockCommitted: state.StockCommitted,
	}
	for _, rl := range state.Lines {
		if rl.Quantity <= 0 {
			return nil, fmt.Errorf("%w: order %s line %s", ErrInvalidQuantity, state.ID, rl.Product.ID)
		}
		if o.line(rl.Product.ID) != nil {
			return nil, fmt.Errorf("%w: order %s has two lines for %s", ErrDuplicateID, state.ID, rl.Product.ID)
		}
		o.lines = append(o.lines, &LineItem{product: rl.Product, quantity: rl.Quantity, subtotal: rl.Subtotal})
	}
	return o, nil
}
