package txn

import (
	"fmt"
	"strings"
)

// Field names a Transaction field.
type Field string

const (
	FieldID          Field = "id"
	FieldDate        Field = "date"
	FieldAmount      Field = "amount"
	FieldCurrency    Field = "currency"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
)

// Fields returns the fields that take part in record comparison, in the
// order reports list them. The id is the match key and is not included.
func Fields() []Field {
	return []Field{FieldDate, FieldAmount, FieldCurrency, FieldDescription, FieldStatus}
}

// ParseField maps a field name in any letter case to a Field.
func ParseField(s string) (Field, error) {
	name := Field(strings.ToLower(strings.TrimSpace(s)))
	if name == FieldID {
		return name, nil
	}
	for _, f := range Fields() {
		if f == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}
