package app

import (
	"context"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/dejobratic/snackbar/internal/pos/app/queries"
	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"go.opentelemetry.io/otel/attribute"
)

// CreateOrder opens an empty pending order for a customer.
func (s *Service) CreateOrder(ctx context.Context, cmd commands.CreateOrder) (OrderView, error) {
	var out OrderView
	err := s.observe(ctx, "create_order", []attribute.KeyValue{attribute.String("customer.id", cmd.CustomerID)}, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		order, err := s.book.CreateOrder(cmd.CustomerID)
		if err != nil {
			return err
		}
		out = newOrderView(order)
		s.metrics.RecordOrderCreated(ctx, "order")
		return s.commit(ctx, ports.Event{Type: ports.EventOrderCreated, EntityID: out.ID, Data: out})
	})
	return out, err
}

// GetOrder retrieves an order by id.
func (s *Service) GetOrder(ctx context.Context, id string) (OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.book.Order(id)
	if err != nil {
		return OrderView{}, err
	}
	return newOrderView(order), nil
}

// ListOrders returns orders newest first.
func (s *Service) ListOrders(ctx context.Context, query queries.ListOrders) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return newOrderViews(s.book.OrdersByStatus(domain.OrderStatus(query.Status))), nil
}

// AddOrderItem adds units of a product to an order. Stock is checked but not consumed.
func (s *Service) AddOrderItem(ctx context.Context, cmd commands.AddOrderItem) (OrderView, error) {
	var out OrderView
	attrs := []attribute.KeyValue{
		attribute.String("order.id", cmd.OrderID),
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("quantity", cmd.Quantity),
	}
	err := s.observe(ctx, "add_order_item", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.book.AddItem(cmd.OrderID, cmd.ProductID, cmd.Quantity); err != nil {
			return err
		}
		return s.commitOrderUpdate(ctx, cmd.OrderID, &out)
	})
	return out, err
}

// RemoveOrderItem drops a product's line from an order.
func (s *Service) RemoveOrderItem(ctx context.Context, cmd commands.RemoveOrderItem) (OrderView, error) {
	var out OrderView
	attrs := []attribute.KeyValue{
		attribute.String("order.id", cmd.OrderID),
		attribute.String("product.id", cmd.ProductID),
	}
	err := s.observe(ctx, "remove_order_item", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.book.RemoveItem(cmd.OrderID, cmd.ProductID); err != nil {
			return err
		}
		return s.commitOrderUpdate(ctx, cmd.OrderID, &out)
	})
	return out, err
}

func (s *Service) commitOrderUpdate(ctx context.Context, orderID string, out *OrderView) error {
	order, err := s.book.Order(orderID)
	if err != nil {
		return err
	}
	*out = newOrderView(order)
	return s.commit(ctx, ports.Event{Type: ports.EventOrderUpdated, EntityID: orderID, Data: *out})
}

// SetOrderStatus moves an order through its lifecycle. The first delivery consumes stock for every line.
func (s *Service) SetOrderStatus(ctx context.Context, cmd commands.SetOrderStatus) (OrderView, error) {
	var out OrderView
	attrs := []attribute.KeyValue{
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.new_status", cmd.Status),
	}
	err := s.observe(ctx, "set_order_status", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}
		status := domain.OrderStatus(cmd.Status)

		s.mu.Lock()
		defer s.mu.Unlock()

		order, err := s.book.Order(cmd.OrderID)
		if err != nil {
			return err
		}
		from := order.Status()
		wasCommitted := order.StockCommitted()

		if err := s.book.SetStatus(cmd.OrderID, status); err != nil {
			return err
		}
		out = newOrderView(order)
		s.metrics.RecordStatusTransition(ctx, string(from), string(status))

		events := []ports.Event{{
			Type:     ports.EventOrderStatusChanged,
			EntityID: order.ID(),
			Data:     StatusChange{From: from, To: status, Order: out},
		}}
		if !wasCommitted && order.StockCommitted() {
			for _, l := range order.Lines() {
				s.metrics.RecordStockConsumed(ctx, l.ProductID(), l.Quantity())
				p, _ := s.catalog.Resolve(l.ProductID())
				events = append(events, ports.Event{
					Type:     ports.EventStockChanged,
					EntityID: l.ProductID(),
					Data:     StockChange{ProductID: l.ProductID(), Stock: p.Stock, Delta: -l.Quantity()},
				})
			}
		}
		return s.commit(ctx, events...)
	})
	return out, err
}
