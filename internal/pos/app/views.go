package app

import (
	"time"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/shopspring/decimal"
)

type LineItemView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderView struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id"`
	Status         domain.OrderStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	Total          decimal.Decimal    `json:"total"`
	StockCommitted bool               `json:"stock_committed"`
	Items          []LineItemView     `json:"items"`
}

func newOrderView(o *domain.Order) OrderView {
	lines := o.Lines()
	items := make([]LineItemView, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItemView{
			ProductID:   l.ProductID(),
			ProductName: l.ProductName(),
			UnitPrice:   l.UnitPrice(),
			Quantity:    l.Quantity(),
			Subtotal:    l.Subtotal(),
		})
	}
	return OrderView{
		ID:             o.ID(),
		CustomerID:     o.CustomerID(),
		Status:         o.Status(),
		CreatedAt:      o.CreatedAt(),
		Total:          o.Total(),
		StockCommitted: o.StockCommitted(),
		Items:          items,
	}
}

func newOrderViews(orders []*domain.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderView(o))
	}
	return out
}

type CartItemView struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID    string          `json:"id"`
	Items []CartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newCartView(id string, c *domain.Cart) CartView {
	entries := c.Entries()
	items := make([]CartItemView, 0, len(entries))
	for _, e := range entries {
		items = append(items, CartItemView{
			ProductID:   e.ProductID(),
			ProductName: e.ProductName(),
			UnitPrice:   e.UnitPrice(),
			Quantity:    e.Quantity(),
			Subtotal:    e.Subtotal(),
		})
	}
	return CartView{ID: id, Items: items, Total: c.Total()}
}

type SalesReport struct {
	Start *time.Time      `json:"start,omitempty"`
	End   *time.Time      `json:"end,omitempty"`
	Total decimal.Decimal `json:"total"`
}

// StockChange is the payload of a stock.changed event.
type StockChange struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
	Delta     int    `json:"delta"`
}

// StatusChange is the payload of an order.status_changed event.
type StatusChange struct {
	From  domain.OrderStatus `json:"from"`
	To    domain.OrderStatus `json:"to"`
	Order OrderView          `json:"order"`
}
