package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/ports"
)

func snapshot(catalog *domain.Catalog, customers *domain.Directory, book *domain.OrderBook) ports.Document {
	doc := ports.Document{
		Products:          []ports.ProductRecord{},
		Customers:         []ports.CustomerRecord{},
		Orders:            []ports.OrderRecord{},
		NextOrderSequence: book.Sequence() + 1,
	}

	for _, p := range catalog.Records() {
		doc.Products = append(doc.Products, ports.ProductRecord{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Available: p.Available,
			Stock:     p.Stock,
			Removed:   p.Removed,
		})
	}

	for _, c := range customers.Customers() {
		doc.Customers = append(doc.Customers, ports.CustomerRecord(c))
	}

	for _, o := range book.Orders() {
		committed := o.StockCommitted()
		record := ports.OrderRecord{
			ID:             o.ID(),
			CustomerID:     o.CustomerID(),
			Status:         string(o.Status()),
			CreatedAt:      o.CreatedAt(),
			Total:          o.Total(),
			StockCommitted: &committed,
			LineItems:      []ports.LineItemRecord{},
		}
		for _, l := range o.Lines() {
			record.LineItems = append(record.LineItems, ports.LineItemRecord{
				ProductID: l.ProductID(),
				Quantity:  l.Quantity(),
				Subtotal:  l.Subtotal(),
			})
		}
		doc.Orders = append(doc.Orders, record)
	}

	return doc
}

type state struct {
	catalog   *domain.Catalog
	customers *domain.Directory
	book      *domain.OrderBook
}

// restore rebuilds the domain from a document. Line items that reference unknown products are dropped
// with a warning and their order keeps its persisted total.
func restore(ctx context.Context, logger *slog.Logger, doc ports.Document, now func() time.Time) (*state, error) {
	st := &state{
		catalog:   domain.NewCatalog(),
		customers: domain.NewDirectory(),
	}
	st.book = domain.NewOrderBook(st.catalog, st.customers, domain.WithClock(now))

	for _, r := range doc.Products {
		p := domain.Product{
			ID:        r.ID,
			Name:      r.Name,
			Price:     r.Price,
			Available: r.Available && !r.Removed,
			Stock:     r.Stock,
			Removed:   r.Removed,
		}
		if err := st.catalog.Restore(p); err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", ports.ErrMalformedDocument, r.ID, err)
		}
	}

	for _, r := range doc.Customers {
		if err := st.customers.Register(domain.Customer(r)); err != nil {
			return nil, fmt.Errorf("%w: customer %q: %v", ports.ErrMalformedDocument, r.ID, err)
		}
	}

	for _, r := range doc.Orders {
		if !st.customers.Exists(r.CustomerID) {
			logger.WarnContext(ctx, "order references unknown customer",
				"order_id", r.ID,
				"customer_id", r.CustomerID,
			)
		}
		order, err := restoreOrder(ctx, logger, st.catalog, r)
		if err != nil {
			return nil, err
		}
		if err := st.book.Restore(order); err != nil {
			return nil, fmt.Errorf("%w: order %q: %v", ports.ErrMalformedDocument, r.ID, err)
		}
	}

	if doc.NextOrderSequence > 0 && doc.NextOrderSequence-1 != st.book.Sequence() {
		logger.WarnContext(ctx, "persisted order sequence disagrees with order ids, using highest id",
			"next_order_sequence", doc.NextOrderSequence,
			"order_sequence", st.book.Sequence(),
		)
	}

	return st, nil
}

func restoreOrder(ctx context.Context, logger *slog.Logger, catalog *domain.Catalog, r ports.OrderRecord) (*domain.Order, error) {
	status, err := domain.ParseOrderStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: order %q: %v", ports.ErrMalformedDocument, r.ID, err)
	}

	committed := status == domain.StatusDelivered
	if r.StockCommitted != nil {
		committed = *r.StockCommitted
	}

	orderState := domain.OrderState{
		ID:             r.ID,
		CustomerID:     r.CustomerID,
		Status:         status,
		CreatedAt:      r.CreatedAt,
		Total:          r.Total,
		StockCommitted: committed,
	}
	for _, li := range r.LineItems {
		product, ok := catalog.Resolve(li.ProductID)
		if !ok {
			logger.WarnContext(ctx, "dropping line item for unknown product",
				"order_id", r.ID,
				"product_id", li.ProductID,
				"quantity", li.Quantity,
			)
			continue
		}
		orderState.Lines = append(orderState.Lines, domain.RestoredLine{
			Product:  product,
			Quantity: li.Quantity,
			Subtotal: li.Subtotal,
		})
	}

	order, err := domain.RestoreOrder(orderState)
	if err != nil {
		return nil, fmt.Errorf("%w: order %q: %v", ports.ErrMalformedDocument, r.ID, err)
	}
	return order, nil
}
