package txn

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the textual form of a Date in every text format.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrDateRange   = errors.New("date outside years 1-9999")
)

// Date is a calendar day counted from 1970-01-01.
type Date int32

// NewDate builds a Date from its calendar parts. Out-of-range parts are
// normalised the way time.Date does. Years far outside 1-9999 saturate at
// the ends of the Date range, so the result stays invalid.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	days := t.Unix() / secondsPerDay
	switch {
	case days > math.MaxInt32:
		return Date(math.MaxInt32)
	case days < math.MinInt32:
		return Date(math.MinInt32)
	}
	return Date(days)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	raw := strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return 0, &FieldError{Field: FieldDate, Value: s, Err: ErrInvalidDate}
	}
	return Date(t.Unix() / secondsPerDay), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Valid reports whether the date can be written as YYYY-MM-DD.
func (d Date) Valid() bool {
	y := d.Time().Year()
	return y >= 1 && y <= 9999
}

func (d Date) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Date(%d)", int32(d))
	}
	return d.Time().Format(DateLayout)
}
