package domain_test

import (
	"fmt"
	"testing"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"pgregory.net/rapid"
)

// Random sequences of edits, restocks, status changes and checkouts must keep every order total equal
// to its line sum and every stock level non-negative, and must consume stock only at delivery.
func TestOrderBookInvariantsHoldUnderRandomOperations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		f.addCustomer(rt, "C1")
		productIDs := []string{"P1", "P2", "P3"}
		initial := map[string]int{}
		for i, id := range productIDs {
			stock := rapid.IntRange(0, 20).Draw(rt, "stock-"+id)
			f.addProduct(rt, id, fmt.Sprintf("Item %d", i), fmt.Sprintf("%d.25", i+1), stock)
			initial[id] = stock
		}
		restocked := map[string]int{}
		delivered := map[string]int{}
		cart := domain.NewCart()

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			productID := rapid.SampledFrom(productIDs).Draw(rt, "product")
			qty := rapid.IntRange(-1, 6).Draw(rt, "qty")
			orders := f.book.Orders()

			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				_, _ = f.book.CreateOrder("C1")
			case 1:
				if len(orders) > 0 {
					o := rapid.SampledFrom(orders).Draw(rt, "order")
					_ = f.book.AddItem(o.ID(), productID, qty)
				}
			case 2:
				if len(orders) > 0 {
					o := rapid.SampledFrom(orders).Draw(rt, "order")
					_ = f.book.RemoveItem(o.ID(), productID)
				}
			case 3:
				if len(orders) > 0 {
					o := rapid.SampledFrom(orders).Draw(rt, "order")
					status := rapid.SampledFrom(domain.Statuses).Draw(rt, "status")
					wasCommitted := o.StockCommitted()
					if err := f.book.SetStatus(o.ID(), status); err == nil && !wasCommitted && o.StockCommitted() {
						for _, l := range o.Lines() {
							delivered[l.ProductID()] += l.Quantity()
						}
					}
				}
			case 4:
				if qty > 0 {
					if _, err := f.catalog.AdjustStock(productID, qty); err == nil {
						restocked[productID] += qty
					}
				}
			case 5:
				p, err := f.catalog.Lookup(productID)
				if err == nil {
					_ = cart.Add(p, qty)
				}
			case 6:
				_, _ = cart.Checkout("C1", f.book)
			}

			for _, o := range f.book.Orders() {
				assertTotalMatchesLines(rt, o)
			}
			for _, p := range f.catalog.Records() {
				if p.Stock < 0 {
					rt.Fatalf("product %s has negative stock %d", p.ID, p.Stock)
				}
			}
		}

		for _, id := range productIDs {
			p, _ := f.catalog.Lookup(id)
			want := initial[id] + restocked[id] - delivered[id]
			if p.Stock != want {
				rt.Fatalf("product %s stock %d, want %d", id, p.Stock, want)
			}
		}
	})
}
