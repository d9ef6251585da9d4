package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ssargent/ypbank/pkg/txn"
)

// Format identifies one of the wire formats.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
	FormatBinary Format = "bin"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatText, FormatBinary}
}

func (f Format) String() string {
	return string(f)
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat maps a format name in any letter case to a Format.
func ParseFormat(s string) (Format, error) {
	name := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range Formats() {
		if f == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want csv, txt or bin)", s)
}

// Codec parses and serializes transactions in one wire format. Codecs keep
// no state between calls and are safe for concurrent use.
type Codec interface {
	Format() Format
	Decode(r io.Reader) ([]txn.Transaction, error)
	Encode(w io.Writer, txs []txn.Transaction) error
}

type options struct {
	maxDescriptionBytes int
}

// Option adjusts codec limits.
type Option func(*options)

// WithMaxDescriptionBytes bounds the description length the binary codec
// accepts and writes. Values outside 0..65535 are clamped.
func WithMaxDescriptionBytes(n int) Option {
	return func(o *options) {
		switch {
		case n < 0:
			o.maxDescriptionBytes = 0
		case n > MaxDescriptionBytes:
			o.maxDescriptionBytes = MaxDescriptionBytes
		default:
			o.maxDescriptionBytes = n
		}
	}
}

// New returns the codec for format f.
func New(f Format, opts ...Option) (Codec, error) {
	switch f {
	case FormatCSV:
		return NewCSVCodec(), nil
	case FormatText:
		return NewTextCodec(), nil
	case FormatBinary:
		return NewBinaryCodec(opts...), nil
	}
	return nil, fmt.Errorf("unknown format %q", string(f))
}

// Detect identifies the format of a file from its leading bytes, falling
// back to the file extension. It reports false when neither is conclusive.
func Detect(name string, head []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(head, Magic[:]):
		return FormatBinary, true
	case bytes.HasPrefix(head, []byte(csvHeaderLine)):
		return FormatCSV, true
	case looksLikeText(head):
		return FormatText, true
	}
	return FormatFromPath(name)
}

// FormatFromPath maps a file extension to a format.
func FormatFromPath(name string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range Formats() {
		if ext == f.Extension() {
			return f, true
		}
	}
	return "", false
}

func looksLikeText(head []byte) bool {
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		key, _, ok := strings.Cut(line, ":")
		return ok && strings.TrimSpace(key) == keyID
	}
	return false
}

// recordError converts a txn validation failure into a TypeParse error.
func recordError(f Format, op string, record, line int, err error) *Error {
	e := &Error{Kind: KindTypeParse, Format: f, Op: op, Record: record, Line: line, Err: err}
	var fe *txn.FieldError
	if errors.As(err, &fe) {
		e.Field = string(fe.Field)
	}
	return e
}

func ioError(f Format, op string, err error) *Error {
	return &Error{Kind: KindIO, Format: f, Op: op, Err: err}
}
