package commands

import (
	"strings"

	"github.com/dejobratic/snackbar/internal/pos/domain"
	"github.com/shopspring/decimal"
)

func invalid(message string) error {
	return &domain.Error{Kind: domain.KindInvalidInput, Message: message}
}

func required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field + " is required")
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("price must be a decimal number")
	}
	if err := domain.ValidatePrice(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}
