package app

import (
	"context"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"go.opentelemetry.io/otel/attribute"
)

func (s *Service) ListCustomers(ctx context.Context) []domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.Customers()
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.Lookup(id)
}

// RegisterCustomer adds a customer to the directory.
func (s *Service) RegisterCustomer(ctx context.Context, cmd commands.RegisterCustomer) (domain.Customer, error) {
	var out domain.Customer
	err := s.observe(ctx, "register_customer", []attribute.KeyValue{attribute.String("customer.id", cmd.ID)}, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.customers.Register(cmd.Customer()); err != nil {
			return err
		}
		out, _ = s.customers.Lookup(cmd.ID)
		return s.commit(ctx, customerChanged(out))
	})
	return out, err
}

// UpdateCustomer applies a partial edit to a customer.
func (s *Service) UpdateCustomer(ctx context.Context, cmd commands.UpdateCustomer) (domain.Customer, error) {
	var out domain.Customer
	err := s.observe(ctx, "update_customer", []attribute.KeyValue{attribute.String("customer.id", cmd.CustomerID)}, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.customers.UpdateInfo(cmd.CustomerID, cmd.Update()); err != nil {
			return err
		}
		out, _ = s.customers.Lookup(cmd.CustomerID)
		return s.commit(ctx, customerChanged(out))
	})
	return out, err
}

func customerChanged(c domain.Customer) ports.Event {
	return ports.Event{Type: ports.EventCustomerChanged, EntityID: c.ID, Data: c}
}
