package codec_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/txn"
)

// ExampleCSVCodec_Encode writes a single transaction as CSV
func ExampleCSVCodec_Encode() {
	tx := txn.Transaction{
		ID:          1,
		Date:        txn.NewDate(2024, time.January, 15),
		Amount:      -1250,
		Currency:    "USD",
		Description: "Coffee",
		Status:      txn.StatusCompleted,
	}

	if err := codec.NewCSVCodec().Encode(os.Stdout, []txn.Transaction{tx}); err != nil {
		log.Fatal(err)
	}

	// Output:
	// TX_ID,DATE,AMOUNT,CURRENCY,STATUS,DESCRIPTION
	// 1,2024-01-15,-12.50,USD,COMPLETED,Coffee
}

// ExampleBinaryCodec_Decode converts text input to binary and reads it back
func ExampleBinaryCodec_Decode() {
	input := `TX_ID: 9
DATE: 2024-03-01
AMOUNT: 250.00
CURRENCY: EUR
STATUS: PENDING
DESCRIPTION: "Salary advance"
`
	txs, err := codec.NewTextCodec().Decode(strings.NewReader(input))
	if err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	if err := codec.NewBinaryCodec().Encode(&buf, txs); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Encoded %d bytes\n", buf.Len())

	decoded, err := codec.NewBinaryCodec().Decode(&buf)
	if err != nil {
		log.Fatal(err)
	}
	for _, tx := range decoded {
		fmt.Printf("%d %s %s %s %s %q\n", tx.ID, tx.Date, tx.Amount, tx.Currency, tx.Status, tx.Description)
	}

	// Output:
	// Encoded 48 bytes
	// 9 2024-03-01 250.00 EUR PENDING "Salary advance"
}

// ExampleKindOf shows how callers tell error kinds apart
func ExampleKindOf() {
	_, err := codec.NewBinaryCodec().Decode(strings.NewReader("NOPE\x00\x00\x00\x00"))

	fmt.Println(errors.Is(err, codec.ErrInvalidMagicNumber))
	fmt.Println(codec.KindOf(err))

	// Output:
	// true
	// invalid_magic
}

func ExampleDetect() {
	f, ok := codec.Detect("statement.dat", []byte("YPBN\x00\x00\x00\x00"))
	fmt.Println(f, ok)

	f, ok = codec.Detect("statement.csv", nil)
	fmt.Println(f, ok)

	// Output:
	// bin true
	// csv true
}
