package queries_test

import (
	"testing"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/app/queries"
	"github.com/dejobratic/snackbar/internal/pos/domain"
)

func TestTotalSalesBounds(t *testing.T) {
	tests := []struct {
		name      string
		query     queries.TotalSales
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "open range", query: queries.TotalSales{}},
		{name: "start only", query: queries.TotalSales{Start: "2024-03-01"}, wantStart: "2024-03-01T00:00:00Z"},
		{name: "end covers the whole day", query: queries.TotalSales{End: "2024-03-02"}, wantEnd: "2024-03-02T23:59:59.999999999Z"},
		{name: "same day", query: queries.TotalSales{Start: "2024-03-02", End: "2024-03-02"}, wantStart: "2024-03-02T00:00:00Z", wantEnd: "2024-03-02T23:59:59.999999999Z"},
		{name: "reversed", query: queries.TotalSales{Start: "2024-03-03", End: "2024-03-02"}, wantErr: true},
		{name: "bad format", query: queries.TotalSales{Start: "03/01/2024"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.query.Bounds(time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if kind, _ := domain.KindOf(err); kind != domain.KindInvalidInput {
					t.Errorf("expected invalid input, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := format(start); got != tt.wantStart {
				t.Errorf("expected start %q, got %q", tt.wantStart, got)
			}
			if got := format(end); got != tt.wantEnd {
				t.Errorf("expected end %q, got %q", tt.wantEnd, got)
			}
		})
	}
}

func TestTotalSalesBoundsAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	tests := []struct {
		name    string
		day     string
		wantEnd string
	}{
		{name: "spring forward", day: "2024-03-10", wantEnd: "2024-03-10T23:59:59.999999999-04:00"},
		{name: "fall back", day: "2024-11-03", wantEnd: "2024-11-03T23:59:59.999999999-05:00"},
		{name: "regular day", day: "2024-06-15", wantEnd: "2024-06-15T23:59:59.999999999-04:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := queries.TotalSales{Start: tt.day, End: tt.day}.Bounds(loc)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := format(end); got != tt.wantEnd {
				t.Errorf("expected end %q, got %q", tt.wantEnd, got)
			}
			if got := start.Format("2006-01-02 15:04"); got != tt.day+" 00:00" {
				t.Errorf("expected start at local midnight, got %q", got)
			}
		})
	}
}

func format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func TestTopProductsLimit(t *testing.T) {
	if got := (queries.TopProducts{}).Limit(); got != queries.DefaultTopProducts {
		t.Errorf("expected default %d, got %d", queries.DefaultTopProducts, got)
	}
	if err := (queries.TopProducts{N: -1}).Validate(); err == nil {
		t.Error("expected error for negative n")
	}
	if err := (queries.TopProducts{N: 3}).Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestListOrdersValidate(t *testing.T) {
	if err := (queries.ListOrders{}).Validate(); err != nil {
		t.Errorf("expected empty filter to be valid, got %v", err)
	}
	if err := (queries.ListOrders{Status: "ready"}).Validate(); err != nil {
		t.Errorf("expected ready to be valid, got %v", err)
	}
	if err := (queries.ListOrders{Status: "shipped"}).Validate(); err == nil {
		t.Error("expected unknown status to be rejected")
	}
}
