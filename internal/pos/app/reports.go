package app

import (
	"context"

	"github.com/dejobratic/snackbar/internal/pos/app/queries"
	"github.com/dejobratic/snackbar/internal/pos/domain"
)

// TotalSales sums delivered orders created within the requested dates.
func (s *Service) TotalSales(ctx context.Context, query queries.TotalSales) (SalesReport, error) {
	start, end, err := query.Bounds(s.location)
	if err != nil {
		return SalesReport{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return SalesReport{Start: start, End: end, Total: s.book.TotalSales(start, end)}, nil
}

// TopProducts ranks products by units sold in delivered orders.
func (s *Service) TopProducts(ctx context.Context, query queries.TopProducts) ([]domain.ProductSales, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.TopProducts(query.Limit()), nil
}

// CustomerOrders returns a customer's orders, newest first.
func (s *Service) CustomerOrders(ctx context.Context, customerID string) ([]OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.book.OrdersForCustomer(customerID)
	if err != nil {
		return nil, err
	}
	return newOrderViews(orders), nil
}
