package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as integer minor units (scale 2) so that both SQLite and
// PostgreSQL compare and sum them exactly.
const moneyScale = 2

var minimumUnit = decimal.NewFromInt(1)

func toMinor(d decimal.Decimal) int64 {
	return d.Shift(moneyScale).IntPart()
}

func fromMinor(m int64) decimal.Decimal {
	return decimal.New(m, -moneyScale)
}

// checkScale rejects amounts with more fractional digits than the currency
// carries, and amounts whose minor units do not fit the int64 columns.
func checkScale(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(moneyScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount.String(), moneyScale)
	}
	if !amount.Shift(moneyScale).BigInt().IsInt64() {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, amount.String())
	}
	return nil
}

func checkPositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount.String())
	}
	return checkScale(amount)
}

// ParseAmount parses a decimal string as supplied by a request layer.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, s)
	}
	return d, nil
}
