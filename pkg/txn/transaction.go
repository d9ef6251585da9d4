package txn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation errors returned (wrapped in a FieldError) by the parse helpers
// and by Transaction.Validate.
var (
	ErrInvalidID          = errors.New("invalid transaction id")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidDescription = errors.New("description is not valid UTF-8")
)

// MaxCurrencyLen is the longest currency code any format can carry.
const MaxCurrencyLen = 3

// Transaction is the canonical bank transaction record.
type Transaction struct {
	ID          uint64
	Date        Date
	Amount      Amount
	Currency    string
	Description string
	Status      Status
}

// FieldError reports which field of a record failed to parse or validate.
type FieldError struct {
	Field Field
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks every field against the rules shared by all formats.
func (t Transaction) Validate() error {
	if !t.Date.Valid() {
		return &FieldError{Field: FieldDate, Value: t.Date.String(), Err: ErrDateRange}
	}
	if err := ValidateCurrency(t.Currency); err != nil {
		return &FieldError{Field: FieldCurrency, Value: t.Currency, Err: err}
	}
	if !t.Status.Valid() {
		return &FieldError{Field: FieldStatus, Value: t.Status.String(), Err: ErrUnknownStatus}
	}
	if !utf8.ValidString(t.Description) {
		return &FieldError{Field: FieldDescription, Value: t.Description, Err: ErrInvalidDescription}
	}
	return nil
}

// Value renders a single field the way the text formats write it.
func (t Transaction) Value(f Field) string {
	switch f {
	case FieldID:
		return strconv.FormatUint(t.ID, 10)
	case FieldDate:
		return t.Date.String()
	case FieldAmount:
		return t.Amount.String()
	case FieldCurrency:
		return t.Currency
	case FieldDescription:
		return t.Description
	case FieldStatus:
		return t.Status.String()
	}
	return ""
}

// ParseID parses a decimal unsigned transaction id.
func ParseID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &FieldError{Field: FieldID, Value: s, Err: ErrInvalidID}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &FieldError{Field: FieldID, Value: s, Err: ErrInvalidID}
	}
	return id, nil
}

// ValidateCurrency accepts one to three upper-case ASCII letters.
func ValidateCurrency(code string) error {
	if code == "" || len(code) > MaxCurrencyLen {
		return ErrInvalidCurrency
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return ErrInvalidCurrency
		}
	}
	return nil
}

// ParseCurrency trims and validates a currency code.
func ParseCurrency(s string) (string, error) {
	code := strings.TrimSpace(s)
	if err := ValidateCurrency(code); err != nil {
		return "", &FieldError{Field: FieldCurrency, Value: s, Err: err}
	}
	return code, nil
}
