package domain_test

import (
	"errors"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/shopspring/decimal"
)

type tb interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

type fixture struct {
	catalog   *domain.Catalog
	customers *domain.Directory
	book      *domain.OrderBook
	clock     time.Time
}

func newFixture(t tb) *fixture {
	t.Helper()
	f := &fixture{
		catalog:   domain.NewCatalog(),
		customers: domain.NewDirectory(),
		clock:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.book = domain.NewOrderBook(f.catalog, f.customers, domain.WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}))
	return f
}

func (f *fixture) addProduct(t tb, id, name, price string, stock int) *domain.Product {
	t.Helper()
	if err := f.catalog.Add(domain.Product{ID: id, Name: name, Price: money(t, price), Available: true, Stock: stock}); err != nil {
		t.Fatalf("add product %s: %v", id, err)
	}
	p, err := f.catalog.Lookup(id)
	if err != nil {
		t.Fatalf("lookup product %s: %v", id, err)
	}
	return p
}

func (f *fixture) addCustomer(t tb, id string) {
	t.Helper()
	if err := f.customers.Register(domain.Customer{ID: id, Name: "Customer " + id, Phone: "11999998888"}); err != nil {
		t.Fatalf("register customer %s: %v", id, err)
	}
}

func (f *fixture) createOrder(t tb, customerID string) *domain.Order {
	t.Helper()
	o, err := f.book.CreateOrder(customerID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func money(t tb, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func assertKind(t tb, err error, want domain.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	got, ok := domain.KindOf(err)
	if !ok {
		t.Fatalf("expected domain error of kind %s, got %v", want, err)
	}
	if got != want {
		t.Errorf("expected kind %s, got %s (%v)", want, got, err)
	}
}

func assertIs(t tb, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("expected error %v, got %v", target, err)
	}
}

func assertTotalMatchesLines(t tb, o *domain.Order) {
	t.Helper()
	sum := decimal.Zero
	for _, l := range o.Lines() {
		sum = sum.Add(l.Subtotal())
	}
	if !sum.Equal(o.Total()) {
		t.Errorf("order %s total %s does not match line sum %s", o.ID(), o.Total(), sum)
	}
}

func mustMoney(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
