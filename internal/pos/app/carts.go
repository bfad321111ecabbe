package app

import (
	"context"

	"github.com/dejobratic/snackbar/internal/pos/app/commands"
	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"go.opentelemetry.io/otel/attribute"
)

// Carts are session state: they are never persisted and nothing in them touches stock.

// OpenCart starts a new point of sale session.
func (s *Service) OpenCart(ctx context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	cart := domain.NewCart()
	s.carts[id] = cart
	s.logger.DebugContext(ctx, "cart opened", "cart_id", id)
	return newCartView(id, cart)
}

func (s *Service) GetCart(ctx context.Context, id string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.cart(id)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(id, cart), nil
}

// AddToCart stages units of a product in a cart.
func (s *Service) AddToCart(ctx context.Context, cmd commands.AddToCart) (CartView, error) {
	var out CartView
	attrs := []attribute.KeyValue{
		attribute.String("cart.id", cmd.CartID),
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("quantity", cmd.Quantity),
	}
	err := s.observe(ctx, "add_to_cart", attrs, func(ctx context.Context) error {
		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		cart, err := s.cart(cmd.CartID)
		if err != nil {
			return err
		}
		product, err := s.catalog.Lookup(cmd.ProductID)
		if err != nil {
			return err
		}
		if err := cart.Add(product, cmd.Quantity); err != nil {
			return err
		}
		out = newCartView(cmd.CartID, cart)
		return nil
	})
	return out, err
}

// RemoveFromCart unstages a product. Removing a product that is not staged is a no-op.
func (s *Service) RemoveFromCart(ctx context.Context, cmd commands.RemoveFromCart) (CartView, error) {
	if err := cmd.Validate(); err != nil {
		return CartView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.cart(cmd.CartID)
	if err != nil {
		return CartView{}, err
	}
	cart.Remove(cmd.ProductID)
	return newCartView(cmd.CartID, cart), nil
}

// ClearCart empties a cart but keeps the session open.
func (s *Service) ClearCart(ctx context.Context, id string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.cart(id)
	if err != nil {
		return CartView{}, err
	}
	cart.Clear()
	return newCartView(id, cart), nil
}

// DiscardCart closes a session without creating an order.
func (s *Service) DiscardCart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.cart(id); err != nil {
		return err
	}
	delete(s.carts, id)
	s.logger.DebugContext(ctx, "cart discarded", "cart_id", id)
	return nil
}

// Checkout turns a cart into a pending order and closes the session. On failure the cart is kept intact.
func (s *Service) Checkout(ctx context.Context, cmd commands.Checkout) (OrderView, error) {
	var out OrderView
	attrs := []attribute.KeyValue{
		attribute.String("cart.id", cmd.CartID),
		attribute.String("customer.id", cmd.CustomerID),
	}
	err := s.observe(ctx, "checkout", attrs, func(ctx context.Context) (err error) {
		defer func() {
			s.metrics.RecordCheckout(ctx, err == nil)
		}()

		if err := cmd.Validate(); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		cart, err := s.cart(cmd.CartID)
		if err != nil {
			return err
		}
		order, err := cart.Checkout(cmd.CustomerID, s.book)
		if err != nil {
			return err
		}
		delete(s.carts, cmd.CartID)

		out = newOrderView(order)
		s.metrics.RecordOrderCreated(ctx, "checkout")
		return s.commit(ctx, ports.Event{Type: ports.EventOrderCreated, EntityID: out.ID, Data: out})
	})
	return out, err
}

func (s *Service) cart(id string) (*domain.Cart, error) {
	cart, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart, nil
}
