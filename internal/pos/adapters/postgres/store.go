package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store persists the point-of-sale document across the products, customers, orders and
// order_line_items tables. Every Save replaces all rows inside one transaction.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context) (ports.Document, error) {
	var doc ports.Document

	err := s.pool.QueryRow(ctx, `SELECT next_order_sequence FROM pos_state WHERE id = 1`).Scan(&doc.NextOrderSequence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.Document{}, ports.ErrNoDocument
		}
		return ports.Document{}, fmt.Errorf("select pos state: %w", err)
	}

	if doc.Products, err = s.loadProducts(ctx); err != nil {
		return ports.Document{}, err
	}
	if doc.Customers, err = s.loadCustomers(ctx); err != nil {
		return ports.Document{}, err
	}
	if doc.Orders, err = s.loadOrders(ctx); err != nil {
		return ports.Document{}, err
	}

	return doc, nil
}

func (s *Store) loadProducts(ctx context.Context) ([]ports.ProductRecord, error) {
	query := `
		SELECT id, name, price::text, available, stock, removed
		FROM products
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []ports.ProductRecord{}
	for rows.Next() {
		var (
			p     ports.ProductRecord
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Available, &p.Stock, &p.Removed); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = parseNumeric(price); err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (s *Store) loadCustomers(ctx context.Context) ([]ports.CustomerRecord, error) {
	query := `
		SELECT id, name, phone, address
		FROM customers
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []ports.CustomerRecord{}
	for rows.Next() {
		var c ports.CustomerRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (s *Store) loadOrders(ctx context.Context) ([]ports.OrderRecord, error) {
	query := `
		SELECT id, customer_id, status, created_at, total::text, stock_committed
		FROM orders
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []ports.OrderRecord{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			o         ports.OrderRecord
			total     string
			committed bool
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt, &total, &committed); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.Total, err = parseNumeric(total); err != nil {
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		o.StockCommitted = &committed
		o.LineItems = []ports.LineItemRecord{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	rows.Close()

	lineQuery := `
		SELECT order_id, product_id, quantity, subtotal::text
		FROM order_line_items
		ORDER BY order_id, position
	`

	lines, err := s.pool.Query(ctx, lineQuery)
	if err != nil {
		return nil, fmt.Errorf("query order line items: %w", err)
	}
	defer lines.Close()

	for lines.Next() {
		var (
			orderID  string
			l        ports.LineItemRecord
			subtotal string
		)
		if err := lines.Scan(&orderID, &l.ProductID, &l.Quantity, &subtotal); err != nil {
			return nil, fmt.Errorf("scan order line item: %w", err)
		}
		if l.Subtotal, err = parseNumeric(subtotal); err != nil {
			return nil, fmt.Errorf("order %s line %s subtotal: %w", orderID, l.ProductID, err)
		}
		i, ok := index[orderID]
		if !ok {
			return nil, fmt.Errorf("%w: line item for unknown order %s", ports.ErrMalformedDocument, orderID)
		}
		orders[i].LineItems = append(orders[i].LineItems, l)
	}

	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("iterate order line items: %w", err)
	}

	return orders, nil
}

func (s *Store) Save(ctx context.Context, doc ports.Document) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `TRUNCATE order_line_items, orders, customers, products`); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range doc.Products {
		batch.Queue(`
			INSERT INTO products (id, name, price, available, stock, removed, position)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		`, p.ID, p.Name, p.Price.String(), p.Available, p.Stock, p.Removed, i)
	}
	for i, c := range doc.Customers {
		batch.Queue(`
			INSERT INTO customers (id, name, phone, address, position)
			VALUES ($1, $2, $3, $4, $5)
		`, c.ID, c.Name, c.Phone, c.Address, i)
	}
	for i, o := range doc.Orders {
		committed := o.StockCommitted != nil && *o.StockCommitted
		batch.Queue(`
			INSERT INTO orders (id, customer_id, status, created_at, total, stock_committed, position)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		`, o.ID, o.CustomerID, o.Status, o.CreatedAt, o.Total.String(), committed, i)
		for j, l := range o.LineItems {
			batch.Queue(`
				INSERT INTO order_line_items (order_id, product_id, quantity, subtotal, position)
				VALUES ($1, $2, $3, $4::numeric, $5)
			`, o.ID, l.ProductID, l.Quantity, l.Subtotal.String(), j)
		}
	}
	batch.Queue(`
		INSERT INTO pos_state (id, next_order_sequence, saved_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET next_order_sequence = EXCLUDED.next_order_sequence, saved_at = EXCLUDED.saved_at
	`, doc.NextOrderSequence)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func parseNumeric(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ports.ErrMalformedDocument, err)
	}
	return d, nil
}
