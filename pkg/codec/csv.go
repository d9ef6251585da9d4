package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/ypbank/pkg/txn"
)

const csvHeaderLine = "TX_ID,DATE,AMOUNT,CURRENCY,STATUS,DESCRIPTION"

var csvHeader = strings.Split(csvHeaderLine, ",")

// CSVCodec reads and writes the comma-delimited format: one header line
// followed by one record per line, columns in csvHeader order.
type CSVCodec struct{}

// NewCSVCodec creates a CSV codec.
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

func (c *CSVCodec) Format() Format {
	return FormatCSV
}

// Decode parses a complete CSV document.
func (c *CSVCodec) Decode(r io.Reader) ([]txn.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindFormat, Format: FormatCSV, Op: opDecode, Line: 1, Msg: "missing header"}
	}
	if err != nil {
		return nil, csvReadError(err, 0)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, &Error{
				Kind:   KindFormat,
				Format: FormatCSV,
				Op:     opDecode,
				Line:   1,
				Msg:    fmt.Sprintf("header column %d: want %q, got %q", i+1, want, header[i]),
			}
		}
	}

	var txs []txn.Transaction
	for record := 1; ; record++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvReadError(err, record)
		}
		line, _ := reader.FieldPos(0)

		tx, err := parseCSVRow(row)
		if err != nil {
			return nil, recordError(FormatCSV, opDecode, record, line, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

func parseCSVRow(row []string) (txn.Transaction, error) {
	var tx txn.Transaction
	var err error

	if tx.ID, err = txn.ParseID(row[0]); err != nil {
		return tx, err
	}
	if tx.Date, err = txn.ParseDate(row[1]); err != nil {
		return tx, err
	}
	if tx.Amount, err = txn.ParseAmount(row[2]); err != nil {
		return tx, err
	}
	if tx.Currency, err = txn.ParseCurrency(row[3]); err != nil {
		return tx, err
	}
	if tx.Status, err = txn.ParseStatus(row[4]); err != nil {
		return tx, err
	}
	tx.Description = row[5]

	return tx, tx.Validate()
}

func csvReadError(err error, record int) *Error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &Error{Kind: KindFormat, Format: FormatCSV, Op: opDecode, Record: record, Line: pe.Line, Err: pe.Err}
	}
	return ioError(FormatCSV, opDecode, err)
}

// Encode writes the header and one line per transaction. Fields holding a
// comma, quote or line break are quoted with embedded quotes doubled.
func (c *CSVCodec) Encode(w io.Writer, txs []txn.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return ioError(FormatCSV, opEncode, err)
	}

	row := make([]string, len(csvHeader))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return recordError(FormatCSV, opEncode, i+1, 0, err)
		}
		// The reader folds CRLF inside quoted fields to LF.
		if strings.Contains(tx.Description, "\r\n") {
			return &Error{
				Kind:   KindFormat,
				Format: FormatCSV,
				Op:     opEncode,
				Record: i + 1,
				Field:  string(txn.FieldDescription),
				Msg:    "CRLF line break cannot be stored",
			}
		}

		row[0] = strconv.FormatUint(tx.ID, 10)
		row[1] = tx.Date.String()
		row[2] = tx.Amount.String()
		row[3] = tx.Currency
		row[4] = tx.Status.String()
		row[5] = tx.Description
		if err := cw.Write(row); err != nil {
			return ioError(FormatCSV, opEncode, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return ioError(FormatCSV, opEncode, err)
	}
	return nil
}
