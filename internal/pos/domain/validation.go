package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of decimal places a price may carry.
const PricePlaces = 2

var (
	idPattern    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	phonePattern = regexp.MustCompile(`^\d{8,15}$`)
)

// ValidID reports whether id is a non-empty alphanumeric identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidPhone reports whether phone holds 8 to 15 digits and nothing else.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidatePrice rejects non-positive prices and prices finer than a cent.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if !price.Equal(price.Round(PricePlaces)) {
		return ErrPricePrecision
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
