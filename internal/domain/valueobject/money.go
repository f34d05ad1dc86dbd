package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gigmarket/backend/internal/pkg/apperror"
)

// Budget is a project's optional bid range. Either bound may be absent, but
// when both are present min must not exceed max.
type Budget struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

func NewBudget(min, max *decimal.Decimal) (Budget, error) {
	if min != nil && min.IsNegative() {
		return Budget{}, apperror.New(apperror.ErrCodeValidation, "budget cannot be negative")
	}
	if max != nil && max.IsNegative() {
		return Budget{}, apperror.New(apperror.ErrCodeValidation, "budget cannot be negative")
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return Budget{}, apperror.New(apperror.ErrCodeValidation, "minimum budget cannot exceed maximum budget").
			WithDetail("budget_min", min.String()).
			WithDetail("budget_max", max.String())
	}
	return Budget{Min: min, Max: max}, nil
}

// NullMin returns the lower bound as a nullable decimal for persistence.
func (b Budget) NullMin() decimal.NullDecimal {
	return nullDecimal(b.Min)
}

// NullMax returns the upper bound as a nullable decimal for persistence.
func (b Budget) NullMax() decimal.NullDecimal {
	return nullDecimal(b.Max)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (b Budget) String() string {
	format := func(d *decimal.Decimal) string {
		if d == nil {
			return "-"
		}
		return d.StringFixed(2)
	}
	return fmt.Sprintf("%s - %s", format(b.Min), format(b.Max))
}

// ValidateAmount checks that a monetary amount is strictly positive and has
// at most two decimal places. Comparisons on amounts are exact, never
// epsilon-based.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.New(apperror.ErrCodeValidation, "amount must be positive").
			WithDetail("amount", amount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return apperror.New(apperror.ErrCodeValidation, "amount must have at most two decimal places").
			WithDetail("amount", amount.String())
	}
	return nil
}

// NormalizeCurrency upper-cases a 3-letter currency code.
func NormalizeCurrency(currency string) (string, error) {
	if len(currency) != 3 {
		return "", apperror.New(apperror.ErrCodeValidation, "currency must be a 3-letter code").
			WithDetail("currency", currency)
	}
	normalized := ""
	for _, r := range currency {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r < 'A' || r > 'Z' {
			return "", apperror.New(apperror.ErrCodeValidation, "currency must be a 3-letter code").
				WithDetail("currency", currency)
		}
		normalized += string(r)
	}
	return normalized, nil
}
