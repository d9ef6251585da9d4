package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a codec failure.
type Kind uint8

const (
	KindIO Kind = iota + 1
	KindFormat
	KindInvalidMagic
	KindInvalidStatusTag
	KindMalformedLength
	KindUnexpectedEOF
	KindTypeParse
)

// Sentinels matched with errors.Is against any *Error of the same kind.
var (
	ErrIO                 = errors.New("i/o error")
	ErrFormat             = errors.New("format error")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidStatusTag   = errors.New("invalid status tag")
	ErrMalformedLength    = errors.New("malformed length")
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
	ErrTypeParse          = errors.New("type parse error")
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindFormat:
		return "format"
	case KindInvalidMagic:
		return "invalid_magic"
	case KindInvalidStatusTag:
		return "invalid_status_tag"
	case KindMalformedLength:
		return "malformed_length"
	case KindUnexpectedEOF:
		return "unexpected_eof"
	case KindTypeParse:
		return "type_parse"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindFormat:
		return ErrFormat
	case KindInvalidMagic:
		return ErrInvalidMagicNumber
	case KindInvalidStatusTag:
		return ErrInvalidStatusTag
	case KindMalformedLength:
		return ErrMalformedLength
	case KindUnexpectedEOF:
		return ErrUnexpectedEOF
	case KindTypeParse:
		return ErrTypeParse
	}
	return nil
}

// Error is the single error type every codec returns. Record is 1-based and
// zero when the failure is not tied to a record; Line is set by the text
// formats and Offset by the binary format.
type Error struct {
	Kind   Kind
	Format Format
	Op     string
	Record int
	Line   int
	Offset int64
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Format, e.Op, e.Kind.sentinel())
	var loc []string
	if e.Record > 0 {
		loc = append(loc, fmt.Sprintf("record %d", e.Record))
	}
	if e.Line > 0 {
		loc = append(loc, fmt.Sprintf("line %d", e.Line))
	}
	if e.Format == FormatBinary && e.Op == opDecode {
		loc = append(loc, fmt.Sprintf("offset %d", e.Offset))
	}
	if len(loc) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(loc, ", "))
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": " + e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

const (
	opDecode = "decode"
	opEncode = "encode"
)
