package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/ypbank/pkg/txn"
)

const (
	commentMarker = "#"

	keyID          = "TX_ID"
	keyDate        = "DATE"
	keyAmount      = "AMOUNT"
	keyCurrency    = "CURRENCY"
	keyStatus      = "STATUS"
	keyDescription = "DESCRIPTION"

	// maxTextLine bounds a single line; descriptions are far shorter.
	maxTextLine = 1 << 20
)

var textKeys = []string{keyID, keyDate, keyAmount, keyCurrency, keyStatus, keyDescription}

// TextCodec reads and writes the key-value format. Each record is a block
// of "KEY: VALUE" lines; blocks are separated by blank lines and lines
// starting with '#' are comments. DESCRIPTION is always double-quoted with
// embedded quotes doubled.
type TextCodec struct{}

// NewTextCodec creates a text codec.
func NewTextCodec() *TextCodec {
	return &TextCodec{}
}

func (c *TextCodec) Format() Format {
	return FormatText
}

type textBlock struct {
	record int
	start  int
	values map[string]string
	lines  map[string]int
}

// Decode parses every record block in r.
func (c *TextCodec) Decode(r io.Reader) ([]txn.Transaction, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTextLine)

	var (
		txs    []txn.Transaction
		block  *textBlock
		record int
		lineNo int
	)

	flush := func() error {
		if block == nil {
			return nil
		}
		tx, err := block.transaction()
		if err != nil {
			return err
		}
		txs = append(txs, tx)
		block = nil
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, commentMarker) {
			continue
		}
		if block == nil {
			record++
			block = &textBlock{
				record: record,
				start:  lineNo,
				values: make(map[string]string, len(textKeys)),
				lines:  make(map[string]int, len(textKeys)),
			}
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, block.formatError(lineNo, "", fmt.Sprintf("expected KEY: VALUE, got %q", line))
		}
		key = strings.TrimSpace(key)
		if !isTextKey(key) {
			return nil, block.formatError(lineNo, "", fmt.Sprintf("unknown key %q", key))
		}
		if prev, dup := block.lines[key]; dup {
			return nil, block.formatError(lineNo, "", fmt.Sprintf("duplicate key %s (first on line %d)", key, prev))
		}
		block.values[key] = strings.TrimSpace(value)
		block.lines[key] = lineNo
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &Error{Kind: KindFormat, Format: FormatText, Op: opDecode, Record: record, Line: lineNo + 1, Err: err}
		}
		return nil, ioError(FormatText, opDecode, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return txs, nil
}

func isTextKey(key string) bool {
	for _, k := range textKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (b *textBlock) formatError(line int, field, msg string) *Error {
	return &Error{Kind: KindFormat, Format: FormatText, Op: opDecode, Record: b.record, Line: line, Field: field, Msg: msg}
}

func (b *textBlock) transaction() (txn.Transaction, error) {
	var tx txn.Transaction

	var missing []string
	for _, k := range textKeys {
		if _, ok := b.values[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return tx, b.formatError(b.start, "", "missing "+strings.Join(missing, ", "))
	}

	var err error
	fail := func(key string, err error) error {
		return recordError(FormatText, opDecode, b.record, b.lines[key], err)
	}
	if tx.ID, err = txn.ParseID(b.values[keyID]); err != nil {
		return tx, fail(keyID, err)
	}
	if tx.Date, err = txn.ParseDate(b.values[keyDate]); err != nil {
		return tx, fail(keyDate, err)
	}
	if tx.Amount, err = txn.ParseAmount(b.values[keyAmount]); err != nil {
		return tx, fail(keyAmount, err)
	}
	if tx.Currency, err = txn.ParseCurrency(b.values[keyCurrency]); err != nil {
		return tx, fail(keyCurrency, err)
	}
	if tx.Status, err = txn.ParseStatus(b.values[keyStatus]); err != nil {
		return tx, fail(keyStatus, err)
	}
	desc, msg := unquoteDescription(b.values[keyDescription])
	if msg != "" {
		return tx, b.formatError(b.lines[keyDescription], string(txn.FieldDescription), msg)
	}
	tx.Description = desc
	if err := tx.Validate(); err != nil {
		return tx, fail(keyDescription, err)
	}

	return tx, nil
}

// unquoteDescription strips the surrounding quotes and undoubles embedded
// ones. A non-empty msg describes why v is not a valid quoted value.
func unquoteDescription(v string) (string, string) {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return "", "value must be enclosed in double quotes"
	}
	inner := v[1 : len(v)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '"' {
			if i+1 < len(inner) && inner[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			return "", fmt.Sprintf("unescaped quote at position %d", i+1)
		}
		b.WriteByte(inner[i])
	}
	return b.String(), ""
}

func quoteDescription(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Encode writes one block per transaction. Descriptions containing line
// breaks are rejected: the format has no way to escape them.
func (c *TextCodec) Encode(w io.Writer, txs []txn.Transaction) error {
	bw := bufio.NewWriter(w)

	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return recordError(FormatText, opEncode, i+1, 0, err)
		}
		if strings.ContainsAny(tx.Description, "\r\n") {
			return &Error{
				Kind:   KindFormat,
				Format: FormatText,
				Op:     opEncode,
				Record: i + 1,
				Field:  string(txn.FieldDescription),
				Msg:    "line breaks cannot be stored in the text format",
			}
		}

		if i > 0 {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "%s: %s\n", keyID, strconv.FormatUint(tx.ID, 10))
		fmt.Fprintf(bw, "%s: %s\n", keyDate, tx.Date)
		fmt.Fprintf(bw, "%s: %s\n", keyAmount, tx.Amount)
		fmt.Fprintf(bw, "%s: %s\n", keyCurrency, tx.Currency)
		fmt.Fprintf(bw, "%s: %s\n", keyStatus, tx.Status)
		fmt.Fprintf(bw, "%s: %s\n", keyDescription, quoteDescription(tx.Description))
	}

	// bufio keeps the first write error and reports it here.
	if err := bw.Flush(); err != nil {
		return ioError(FormatText, opEncode, err)
	}
	return nil
}
