package txn

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional decimal digits an Amount carries.
const Scale = 2

// maxMajorDigits is one more than the integer digits of the largest
// Amount, so anything longer is out of range without further checks.
const maxMajorDigits = 18

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountPrecision = errors.New("amount has more than two fractional digits")
	ErrAmountRange     = errors.New("amount out of range")
)

// Amount is a signed monetary value in minor units (hundredths).
type Amount int64

// ParseAmount parses a decimal string such as "-12.50" or "7" exactly.
func ParseAmount(s string) (Amount, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrInvalidAmount}
	}
	if d.IsZero() {
		return 0, nil
	}

	// Reject by magnitude before rescaling: Truncate and Shift build
	// 10^|exponent| as a big.Int, and the exponent comes from the input.
	exp, digits := int(d.Exponent()), d.NumDigits()
	if exp > 0 && digits+exp > maxMajorDigits {
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrAmountRange}
	}
	if exp < -Scale && -exp-Scale >= digits {
		// The coefficient cannot have that many trailing zeros.
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrAmountPrecision}
	}

	if !d.Equal(d.Truncate(Scale)) {
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrAmountPrecision}
	}
	minor := d.Shift(Scale).BigInt()
	if !minor.IsInt64() {
		return 0, &FieldError{Field: FieldAmount, Value: s, Err: ErrAmountRange}
	}
	return Amount(minor.Int64()), nil
}

// Decimal returns the amount as an exact decimal in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}
