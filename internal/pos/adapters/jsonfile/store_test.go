package jsonfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/adapters/jsonfile"
	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/shopspring/decimal"
)

func sampleDocument() ports.Document {
	committed := true
	return ports.Document{
		Products: []ports.ProductRecord{
			{ID: "P1", Name: "Coxinha", Price: decimal.RequireFromString("6.50"), Available: true, Stock: 8},
			{ID: "P2", Name: "Suco", Price: decimal.RequireFromString("5"), Stock: 0, Removed: true},
		},
		Customers: []ports.CustomerRecord{
			{ID: "C1", Name: "Ana", Phone: "11987654321", Address: "Rua A, 10"},
		},
		Orders: []ports.OrderRecord{
			{
				ID:             "PED0001",
				CustomerID:     "C1",
				Status:         "delivered",
				CreatedAt:      time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
				Total:          decimal.RequireFromString("13.00"),
				StockCommitted: &committed,
				LineItems: []ports.LineItemRecord{
					{ProductID: "P1", Quantity: 2, Subtotal: decimal.RequireFromString("13.00")},
				},
			},
		},
		NextOrderSequence: 2,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "pos.json")
	store := jsonfile.NewStore(path)
	ctx := context.Background()

	want := sampleDocument()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(got.Products) != 2 || got.Products[1].Removed != true {
		t.Errorf("unexpected products: %+v", got.Products)
	}
	if !got.Products[0].Price.Equal(want.Products[0].Price) {
		t.Errorf("expected price %s, got %s", want.Products[0].Price, got.Products[0].Price)
	}
	if got.Customers[0] != want.Customers[0] {
		t.Errorf("expected customer %+v, got %+v", want.Customers[0], got.Customers[0])
	}
	o := got.Orders[0]
	if o.ID != "PED0001" || !o.CreatedAt.Equal(want.Orders[0].CreatedAt) || !o.Total.Equal(want.Orders[0].Total) {
		t.Errorf("unexpected order: %+v", o)
	}
	if o.StockCommitted == nil || !*o.StockCommitted {
		t.Error("expected stock_committed to survive the round trip")
	}
	if len(o.LineItems) != 1 || o.LineItems[0].Quantity != 2 {
		t.Errorf("unexpected line items: %+v", o.LineItems)
	}
	if got.NextOrderSequence != 2 {
		t.Errorf("expected next_order_sequence 2, got %d", got.NextOrderSequence)
	}
}

func TestStoreLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store := jsonfile.NewStore(filepath.Join(t.TempDir(), "absent.json"))
		_, err := store.Load(context.Background())
		if !errors.Is(err, ports.ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pos.json")
		if err := os.WriteFile(path, []byte(`{"products": [`), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := jsonfile.NewStore(path).Load(context.Background())
		if !errors.Is(err, ports.ErrMalformedDocument) {
			t.Errorf("expected ErrMalformedDocument, got %v", err)
		}
	})

	t.Run("documents without stock tracking", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pos.json")
		legacy := `{"products":[{"id":"P1","name":"Suco","price":5.5,"available":true,"stock":3}],
			"customers":[],"orders":[{"id":"PED0001","customer_id":"C1","status":"delivered",
			"created_at":"2024-03-01T10:00:00Z","total":11,"line_items":[{"product_id":"P1","quantity":2,"subtotal":11}]}],
			"next_order_sequence":2}`
		if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		doc, err := jsonfile.NewStore(path).Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if doc.Orders[0].StockCommitted != nil {
			t.Error("expected absent stock_committed to decode as nil")
		}
		if !doc.Products[0].Price.Equal(decimal.RequireFromString("5.5")) {
			t.Errorf("expected numeric price to decode, got %s", doc.Products[0].Price)
		}
	})
}

func TestStoreSaveFailureKeepsPreviousDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pos.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store := jsonfile.NewStore(path)

	if err := store.Save(context.Background(), sampleDocument()); err == nil {
		t.Fatal("expected save over a directory to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected temp file to be cleaned up, found %v", names)
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.json")
	store := jsonfile.NewStore(path)
	ctx := context.Background()

	if err := store.Save(ctx, sampleDocument()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(ctx, ports.Document{NextOrderSequence: 1}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Products) != 0 || len(doc.Orders) != 0 {
		t.Errorf("expected full overwrite, got %d products %d orders", len(doc.Products), len(doc.Orders))
	}
}
