package txn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned for any status outside the closed set.
var ErrUnknownStatus = errors.New("unknown transaction status")

// Status is the processing state of a transaction. The zero value is not a
// valid status.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusCompleted
	StatusFailed
	StatusCancelled
)

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus maps a status name, in any letter case, to a Status.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, st := range Statuses() {
		if st.String() == name {
			return st, nil
		}
	}
	return 0, &FieldError{Field: FieldStatus, Value: s, Err: ErrUnknownStatus}
}
