package queries

import (
	"strings"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/domain"
)

const (
	// DateLayout is the calendar date format accepted by the report queries.
	DateLayout = "2006-01-02"
	// DefaultTopProducts is how many products a top products report returns when no limit is given.
	DefaultTopProducts = 5
)

func invalid(message string) error {
	return &domain.Error{Kind: domain.KindInvalidInput, Message: message}
}

// ListOrders lists orders newest first, optionally restricted to one status.
type ListOrders struct {
	Status string
}

func (q ListOrders) Validate() error {
	if q.Status == "" {
		return nil
	}
	_, err := domain.ParseOrderStatus(q.Status)
	return err
}

// TotalSales sums delivered orders between two calendar dates. Either bound may be empty.
type TotalSales struct {
	Start string
	End   string
}

// Bounds parses the dates into an inclusive range; the end date covers its whole day.
func (q TotalSales) Bounds(loc *time.Location) (start, end *time.Time, err error) {
	if s := strings.TrimSpace(q.Start); s != "" {
		t, perr := time.ParseInLocation(DateLayout, s, loc)
		if perr != nil {
			return nil, nil, invalid("start must be a date formatted as YYYY-MM-DD")
		}
		start = &t
	}
	if e := strings.TrimSpace(q.End); e != "" {
		t, perr := time.ParseInLocation(DateLayout, e, loc)
		if perr != nil {
			return nil, nil, invalid("end must be a date formatted as YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, invalid("start date must not be after end date")
	}
	return start, end, nil
}

func (q TotalSales) Validate() error {
	_, _, err := q.Bounds(time.UTC)
	return err
}

type TopProducts struct {
	N int
}

// Limit returns the requested size, defaulting when unset.
func (q TopProducts) Limit() int {
	if q.N == 0 {
		return DefaultTopProducts
	}
	return q.N
}

func (q TopProducts) Validate() error {
	if q.Limit() <= 0 {
		return invalid("n must be greater than zero")
	}
	return nil
}
