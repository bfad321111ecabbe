package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the full persisted state of the point of sale.
type Document struct {
	Products          []ProductRecord  `json:"products"`
	Customers         []CustomerRecord `json:"customers"`
	Orders            []OrderRecord    `json:"orders"`
	NextOrderSequence int              `json:"next_order_sequence"`
}

type ProductRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Stock     int             `json:"stock"`
	Removed   bool            `json:"removed,omitempty"`
}

type CustomerRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

type OrderRecord struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Total      decimal.Decimal `json:"total"`
	// StockCommitted is absent in documents written before delivery tracking existed.
	StockCommitted *bool            `json:"stock_committed,omitempty"`
	LineItems      []LineItemRecord `json:"line_items"`
}

type LineItemRecord struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Store persists the whole document. Every save is a full overwrite.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

var (
	// ErrNoDocument is returned by Load when nothing has been persisted yet.
	ErrNoDocument = errors.New("no persisted document")
	// ErrMalformedDocument is returned by Load when the persisted data cannot be decoded.
	ErrMalformedDocument = errors.New("malformed persisted document")
)
