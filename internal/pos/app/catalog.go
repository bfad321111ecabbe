package app

import (
	"context"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"go.opentelemetry.io/otel/attribute"
)

// ListProducts returns the live products in insertion order.
func (s *Service) ListProducts(ctx context.Context) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Products()
}

// GetProduct retrieves a live product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.catalog.Lookup(id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

// AddProduct registers a product, reviving a removed one with the same id.
func (s *Service) AddProduct(ctx context.Context, cmd commands.AddProduct) (domain.Product, error) {
	var out domain.Product
	err := s.observe(ctx, "add_product", []attribute.KeyValue{attribute.String("product.id", cmd.ID)}, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}
		product, err := cmd.Product()
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.catalog.Add(product); err != nil {
			return err
		}
		out = s.productSnapshot(product.ID)
		return s.commit(ctx, productChanged(out))
	})
	return out, err
}

// UpdateProduct applies a partial edit to a product.
func (s *Service) UpdateProduct(ctx context.Context, cmd commands.UpdateProduct) (domain.Product, error) {
	var out domain.Product
	err := s.observe(ctx, "update_product", []attribute.KeyValue{attribute.String("product.id", cmd.ProductID)}, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}
		update, err := cmd.Update()
		if err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.catalog.UpdateInfo(cmd.ProductID, update); err != nil {
			return err
		}
		out = s.productSnapshot(cmd.ProductID)
		return s.commit(ctx, productChanged(out))
	})
	return out, err
}

// SetProductAvailability switches a product on or off the menu.
func (s *Service) SetProductAvailability(ctx context.Context, cmd commands.SetAvailability) (domain.Product, error) {
	var out domain.Product
	attrs := []attribute.KeyValue{
		attribute.String("product.id", cmd.ProductID),
		attribute.Bool("product.available", cmd.Available),
	}
	err := s.observe(ctx, "set_product_availability", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.catalog.SetAvailability(cmd.ProductID, cmd.Available); err != nil {
			return err
		}
		out = s.productSnapshot(cmd.ProductID)
		return s.commit(ctx, productChanged(out))
	})
	return out, err
}

// AdjustStock restocks or writes off units of a product.
func (s *Service) AdjustStock(ctx context.Context, cmd commands.AdjustStock) (domain.Product, error) {
	var out domain.Product
	attrs := []attribute.KeyValue{
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("stock.delta", cmd.Delta),
	}
	err := s.observe(ctx, "adjust_stock", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		level, err := s.catalog.AdjustStock(cmd.ProductID, cmd.Delta)
		if err != nil {
			return err
		}
		out = s.productSnapshot(cmd.ProductID)
		return s.commit(ctx, ports.Event{
			Type:     ports.EventStockChanged,
			EntityID: cmd.ProductID,
			Data:     StockChange{ProductID: cmd.ProductID, Stock: level, Delta: cmd.Delta},
		})
	})
	return out, err
}

// RemoveProduct takes a product off the catalog. Orders that reference it keep resolving.
func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	return s.observe(ctx, "remove_product", []attribute.KeyValue{attribute.String("product.id", id)}, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.catalog.Remove(id); err != nil {
			return err
		}
		return s.commit(ctx, ports.Event{
			Type:     ports.EventProductChanged,
			EntityID: id,
			Data:     map[string]any{"id": id, "removed": true},
		})
	})
}

func (s *Service) productSnapshot(id string) domain.Product {
	p, _ := s.catalog.Resolve(id)
	return *p
}

func productChanged(p domain.Product) ports.Event {
	return ports.Event{Type: ports.EventProductChanged, EntityID: p.ID, Data: p}
}
