package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const orderIDPrefix = "PED"

// OrderBook owns every order, hands out sequential ids and is the only place that permanently
// consumes stock. It is not safe for concurrent use.
type OrderBook struct {
	catalog   *Catalog
	customers *Directory
	orders    map[string]*Order
	ids       []string
	sequence  int
	now       func() time.Time
}

// OrderBookOption customises an OrderBook.
type OrderBookOption func(*OrderBook)

// WithClock replaces the clock used to stamp new orders.
func WithClock(now func() time.Time) OrderBookOption {
	return func(b *OrderBook) {
		b.now = now
	}
}

func NewOrderBook(catalog *Catalog, customers *Directory, opts ...OrderBookOption) *OrderBook {
	b := &OrderBook{
		catalog:   catalog,
		customers: customers,
		orders:    make(map[string]*Order),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FormatOrderID renders a sequence number as an order id, e.g. 7 -> PED0007.
func FormatOrderID(seq int) string {
	return fmt.Sprintf("%s%04d", orderIDPrefix, seq)
}

// ParseOrderSequence extracts the numeric suffix of an order id.
func ParseOrderSequence(id string) (int, bool) {
	if !strings.HasPrefix(id, orderIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(orderIDPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Sequence is the number of the most recently allocated order id.
func (b *OrderBook) Sequence() int {
	return b.sequence
}

// CreateOrder opens an empty pending order for a registered customer.
func (b *OrderBook) CreateOrder(customerID string) (*Order, error) {
	if !b.customers.Exists(customerID) {
		return nil, fmt.Errorf("%w: %q", ErrCustomerNotFound, customerID)
	}
	b.sequence++
	order := newOrder(FormatOrderID(b.sequence), customerID, b.now())
	b.orders[order.id] = order
	b.ids = append(b.ids, order.id)
	return order, nil
}

// discard drops an order created in the current operation, giving back its id when it was the last one.
func (b *OrderBook) discard(order *Order) {
	delete(b.orders, order.id)
	for i, id := range b.ids {
		if id == order.id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
	if seq, ok := ParseOrderSequence(order.id); ok && seq == b.sequence {
		b.sequence--
	}
}

// Order returns the order with the given id.
func (b *OrderBook) Order(id string) (*Order, error) {
	o, ok := b.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOrderNotFound, id)
	}
	return o, nil
}

// Orders returns every order in creation order.
func (b *OrderBook) Orders() []*Order {
	out := make([]*Order, 0, len(b.ids))
	for _, id := range b.ids {
		out = append(out, b.orders[id])
	}
	return out
}

// AddItem adds quantity units of a catalog product to an order.
func (b *OrderBook) AddItem(orderID, productID string, quantity int) error {
	order, err := b.Order(orderID)
	if err != nil {
		return err
	}
	product, err := b.catalog.Lookup(productID)
	if err != nil {
		return err
	}
	return order.AddLineItem(product, quantity)
}

// RemoveItem removes the line for productID from an order.
func (b *OrderBook) RemoveItem(orderID, productID string) error {
	order, err := b.Order(orderID)
	if err != nil {
		return err
	}
	removed, err := order.RemoveLineItem(productID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: product %q in order %s", ErrLineItemNotFound, productID, orderID)
	}
	return nil
}

// SetStatus moves an order to status. The first move to delivered verifies every line against current
// stock and, only if all lines pass, consumes the stock. Later moves never deduct or restore stock.
func (b *OrderBook) SetStatus(orderID string, status OrderStatus) error {
	order, err := b.Order(orderID)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if status == StatusDelivered && !order.stockCommitted {
		for _, l := range order.lines {
			if l.product.Stock < l.quantity {
				return &StockError{
					ProductID:   l.product.ID,
					ProductName: l.product.Name,
					Available:   l.product.Stock,
					Requested:   l.quantity,
				}
			}
		}
		for _, l := range order.lines {
			l.product.Stock -= l.quantity
		}
		order.stockCommitted = true
	}

	return order.SetStatus(status)
}

// Restore inserts a persisted order and keeps the sequence at the highest numeric suffix seen.
func (b *OrderBook) Restore(order *Order) error {
	if _, ok := b.orders[order.id]; ok {
		return fmt.Errorf("%w: order %q", ErrDuplicateID, order.id)
	}
	b.orders[order.id] = order
	b.ids = append(b.ids, order.id)
	if seq, ok := ParseOrderSequence(order.id); ok && seq > b.sequence {
		b.sequence = seq
	}
	return nil
}

// ProductSales is the quantity of one product sold across delivered orders.
type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TotalSales sums delivered order totals created within the inclusive bounds. Nil bounds are open.
func (b *OrderBook) TotalSales(start, end *time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, o := range b.Orders() {
		if o.status != StatusDelivered {
			continue
		}
		if start != nil && o.createdAt.Before(*start) {
			continue
		}
		if end != nil && o.createdAt.After(*end) {
			continue
		}
		total = total.Add(o.total)
	}
	return total
}

// TopProducts ranks products by delivered quantity, keyed by product name. Ties keep the order in
// which the products were first encountered.
func (b *OrderBook) TopProducts(n int) []ProductSales {
	if n <= 0 {
		return []ProductSales{}
	}
	index := make(map[string]int)
	var sales []ProductSales
	for _, o := range b.Orders() {
		if o.status != StatusDelivered {
			continue
		}
		for _, l := range o.lines {
			name := l.product.Name
			i, ok := index[name]
			if !ok {
				i = len(sales)
				index[name] = i
				sales = append(sales, ProductSales{Name: name})
			}
			sales[i].Quantity += l.quantity
		}
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Quantity > sales[j].Quantity
	})
	if len(sales) > n {
		sales = sales[:n]
	}
	if sales == nil {
		sales = []ProductSales{}
	}
	return sales
}

// OrdersForCustomer returns a customer's orders, newest first.
func (b *OrderBook) OrdersForCustomer(customerID string) ([]*Order, error) {
	if !b.customers.Exists(customerID) {
		return nil, fmt.Errorf("%w: %q", ErrCustomerNotFound, customerID)
	}
	var out []*Order
	for _, o := range b.Orders() {
		if o.customerID == customerID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// OrdersByStatus returns orders newest first, restricted to status when it is non-empty.
func (b *OrderBook) OrdersByStatus(status OrderStatus) []*Order {
	var out []*Order
	for _, o := range b.Orders() {
		if status == "" || o.status == status {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].createdAt.After(orders[j].createdAt)
	})
}
