package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ssargent/ypbank/pkg/txn"
)

// Magic opens every binary file.
var Magic = [4]byte{'Y', 'P', 'B', 'N'}

const (
	// MaxDescriptionBytes is the largest description the 2-byte length
	// prefix can describe.
	MaxDescriptionBytes = math.MaxUint16

	// HeaderSize is magic(4) + count(4).
	HeaderSize = 8

	// FixedRecordSize is id(8) + date(4) + amount(8) + currency(3) +
	// status(1) + description length(2).
	FixedRecordSize = 26

	// maxPrealloc caps the slice capacity derived from the untrusted count.
	maxPrealloc = 4096
)

// Status tags as stored in the status byte.
const (
	tagPending   byte = 0x01
	tagCompleted byte = 0x02
	tagFailed    byte = 0x03
	tagCancelled byte = 0x04
)

func statusTag(s txn.Status) (byte, bool) {
	switch s {
	case txn.StatusPending:
		return tagPending, true
	case txn.StatusCompleted:
		return tagCompleted, true
	case txn.StatusFailed:
		return tagFailed, true
	case txn.StatusCancelled:
		return tagCancelled, true
	}
	return 0, false
}

func statusFromTag(tag byte) (txn.Status, bool) {
	switch tag {
	case tagPending:
		return txn.StatusPending, true
	case tagCompleted:
		return txn.StatusCompleted, true
	case tagFailed:
		return txn.StatusFailed, true
	case tagCancelled:
		return txn.StatusCancelled, true
	}
	return 0, false
}

// BinaryCodec reads and writes the YPBN binary format. See the package
// documentation for the layout.
type BinaryCodec struct {
	maxDescriptionBytes int
}

// NewBinaryCodec creates a binary codec.
func NewBinaryCodec(opts ...Option) *BinaryCodec {
	o := options{maxDescriptionBytes: MaxDescriptionBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &BinaryCodec{maxDescriptionBytes: o.maxDescriptionBytes}
}

func (c *BinaryCodec) Format() Format {
	return FormatBinary
}

// binaryReader tracks the byte offset so every error can point at it.
type binaryReader struct {
	r      *bufio.Reader
	off    int64
	record int
}

func (br *binaryReader) read(buf []byte) error {
	n, err := io.ReadFull(br.r, buf)
	br.off += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{
			Kind:   KindUnexpectedEOF,
			Format: FormatBinary,
			Op:     opDecode,
			Record: br.record,
			Offset: br.off,
			Msg:    fmt.Sprintf("need %d bytes, got %d", len(buf), n),
		}
	}
	return &Error{Kind: KindIO, Format: FormatBinary, Op: opDecode, Record: br.record, Offset: br.off, Err: err}
}

func (br *binaryReader) fail(kind Kind, off int64, field, msg string) *Error {
	return &Error{Kind: kind, Format: FormatBinary, Op: opDecode, Record: br.record, Offset: off, Field: field, Msg: msg}
}

// Decode parses a complete binary file. It fails on the first structural
// problem, on any short read and on bytes left after the last record.
func (c *BinaryCodec) Decode(r io.Reader) ([]txn.Transaction, error) {
	br := &binaryReader{r: bufio.NewReader(r)}

	var header [HeaderSize]byte
	if err := br.read(header[:len(Magic)]); err != nil {
		return nil, err
	}
	if !bytes.Equal(header[:len(Magic)], Magic[:]) {
		return nil, br.fail(KindInvalidMagic, 0, "", fmt.Sprintf("got % x, want % x", header[:len(Magic)], Magic[:]))
	}
	if err := br.read(header[len(Magic):]); err != nil {
		return nil, err
	}
	count := binary.BigEndian.Uint32(header[len(Magic):])

	txs := make([]txn.Transaction, 0, int(min(count, maxPrealloc)))
	var fixed [FixedRecordSize]byte
	for i := uint32(0); i < count; i++ {
		br.record = int(i) + 1
		start := br.off
		if err := br.read(fixed[:]); err != nil {
			return nil, err
		}

		tx, descLen, err := c.decodeFixed(br, start, fixed[:])
		if err != nil {
			return nil, err
		}

		descStart := br.off
		desc := make([]byte, descLen)
		if err := br.read(desc); err != nil {
			return nil, err
		}
		if !utf8.Valid(desc) {
			return nil, c.typeError(br, descStart, &txn.FieldError{
				Field: txn.FieldDescription,
				Value: string(desc),
				Err:   txn.ErrInvalidDescription,
			})
		}
		tx.Description = string(desc)
		txs = append(txs, tx)
	}

	br.record = 0
	if _, err := br.r.ReadByte(); err == nil {
		return nil, br.fail(KindFormat, br.off, "", fmt.Sprintf("trailing bytes after %d records", count))
	} else if !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindIO, Format: FormatBinary, Op: opDecode, Offset: br.off, Err: err}
	}

	return txs, nil
}

func (c *BinaryCodec) decodeFixed(br *binaryReader, start int64, b []byte) (txn.Transaction, int, error) {
	tx := txn.Transaction{
		ID:     binary.BigEndian.Uint64(b[0:8]),
		Date:   txn.Date(int32(binary.BigEndian.Uint32(b[8:12]))),
		Amount: txn.Amount(int64(binary.BigEndian.Uint64(b[12:20]))),
	}

	if !tx.Date.Valid() {
		return tx, 0, c.typeError(br, start+8, &txn.FieldError{Field: txn.FieldDate, Value: tx.Date.String(), Err: txn.ErrDateRange})
	}

	currency := strings.TrimRight(string(b[20:23]), "\x00")
	if err := txn.ValidateCurrency(currency); err != nil {
		return tx, 0, c.typeError(br, start+20, &txn.FieldError{Field: txn.FieldCurrency, Value: currency, Err: err})
	}
	tx.Currency = currency

	status, ok := statusFromTag(b[23])
	if !ok {
		return tx, 0, br.fail(KindInvalidStatusTag, start+23, string(txn.FieldStatus), fmt.Sprintf("tag 0x%02x", b[23]))
	}
	tx.Status = status

	descLen := int(binary.BigEndian.Uint16(b[24:26]))
	if descLen > c.maxDescriptionBytes {
		return tx, 0, br.fail(KindMalformedLength, start+24, string(txn.FieldDescription),
			fmt.Sprintf("length %d exceeds maximum %d", descLen, c.maxDescriptionBytes))
	}

	return tx, descLen, nil
}

func (c *BinaryCodec) typeError(br *binaryReader, off int64, err error) *Error {
	e := recordError(FormatBinary, opDecode, br.record, 0, err)
	e.Offset = off
	return e
}

// Encode writes the header, with the count taken from len(txs), followed by
// every record.
func (c *BinaryCodec) Encode(w io.Writer, txs []txn.Transaction) error {
	if uint64(len(txs)) > math.MaxUint32 {
		return &Error{Kind: KindMalformedLength, Format: FormatBinary, Op: opEncode, Msg: fmt.Sprintf("%d records do not fit the count field", len(txs))}
	}

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, HeaderSize+FixedRecordSize)
	buf = append(buf, Magic[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(txs)))
	bw.Write(buf)

	for i, tx := range txs {
		tag, ok := statusTag(tx.Status)
		if !ok {
			return &Error{
				Kind:   KindInvalidStatusTag,
				Format: FormatBinary,
				Op:     opEncode,
				Record: i + 1,
				Field:  string(txn.FieldStatus),
				Msg:    tx.Status.String(),
			}
		}
		if err := tx.Validate(); err != nil {
			return recordError(FormatBinary, opEncode, i+1, 0, err)
		}
		if len(tx.Description) > c.maxDescriptionBytes {
			return &Error{
				Kind:   KindMalformedLength,
				Format: FormatBinary,
				Op:     opEncode,
				Record: i + 1,
				Field:  string(txn.FieldDescription),
				Msg:    fmt.Sprintf("length %d exceeds maximum %d", len(tx.Description), c.maxDescriptionBytes),
			}
		}

		var currency [3]byte
		copy(currency[:], tx.Currency)

		buf = buf[:0]
		buf = binary.BigEndian.AppendUint64(buf, tx.ID)
		buf = binary.BigEndian.AppendUint32(buf, uint32(int32(tx.Date)))
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(tx.Amount)))
		buf = append(buf, currency[:]...)
		buf = append(buf, tag)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(tx.Description)))
		bw.Write(buf)
		bw.WriteString(tx.Description)
	}

	// bufio keeps the first write error and reports it here.
	if err := bw.Flush(); err != nil {
		return ioError(FormatBinary, opEncode, err)
	}
	return nil
}
