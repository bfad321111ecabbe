package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartEntry is one staged product and quantity.
type CartEntry struct {
	product  *Product
	quantity int
}

func (e CartEntry) ProductID() string { return e.product.ID }
func (e CartEntry) ProductName() string { return e.product.Name }
func (e CartEntry) UnitPrice() decimal.Decimal { return e.product.Price }
func (e CartEntry) Quantity() int { return e.quantity }

// Subtotal is computed from the product's current price.
func (e CartEntry) Subtotal() decimal.Decimal {
	return e.product.Price.Mul(decimal.NewFromInt(int64(e.quantity)))
}

// Cart stages point-of-sale selections before an order is committed. Nothing in a cart touches stock.
type Cart struct {
	entries map[string]*CartEntry
	ids     []string
}

func NewCart() *Cart {
	return &Cart{entries: make(map[string]*CartEntry)}
}

// Add stages quantity units of p, merging with any units already staged.
func (c *Cart) Add(p *Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Available || p.Removed {
		return unavailable(p)
	}

	staged := 0
	if e, ok := c.entries[p.ID]; ok {
		staged = e.quantity
	}
	if staged+quantity > p.Stock {
		return &StockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   quantity,
			Staged:      staged,
		}
	}

	if e, ok := c.entries[p.ID]; ok {
		e.quantity += quantity
		return nil
	}
	c.entries[p.ID] = &CartEntry{product: p, quantity: quantity}
	c.ids = append(c.ids, p.ID)
	return nil
}

// Remove drops the staged entry for productID and reports whether one existed.
func (c *Cart) Remove(productID string) bool {
	if _, ok := c.entries[productID]; !ok {
		return false
	}
	delete(c.entries, productID)
	for i, id := range c.ids {
		if id == productID {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.entries = make(map[string]*CartEntry)
	c.ids = nil
}

func (c *Cart) Len() int { return len(c.ids) }

// Entries returns the staged entries in the order they were first added.
func (c *Cart) Entries() []CartEntry {
	out := make([]CartEntry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, *c.entries[id])
	}
	return out
}

// Total sums price times quantity over the staged entries.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range c.ids {
		total = total.Add(c.entries[id].Subtotal())
	}
	return total
}

// Checkout turns the cart into a new order in book. Every staged line is re-validated against current
// availability and stock before the order exists, so a failure leaves the book, the catalog and the
// cart exactly as they were.
func (c *Cart) Checkout(customerID string, book *OrderBook) (*Order, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	if !book.customers.Exists(customerID) {
		return nil, fmt.Errorf("%w: %q", ErrCustomerNotFound, customerID)
	}
	for _, e := range c.Entries() {
		if err := checkStaged(e); err != nil {
			return nil, err
		}
	}

	order, err := book.CreateOrder(customerID)
	if err != nil {
		return nil, err
	}
	for _, e := range c.Entries() {
		if err := order.AddLineItem(e.product, e.quantity); err != nil {
			book.discard(order)
			return nil, err
		}
	}

	c.Clear()
	return order, nil
}

func checkStaged(e CartEntry) error {
	p := e.product
	if !p.Available || p.Removed {
		return unavailable(p)
	}
	if p.Stock < e.quantity {
		return &StockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   e.quantity,
		}
	}
	return nil
}
