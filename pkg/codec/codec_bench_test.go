//go:build bench
// +build bench

package codec

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ssargent/ypbank/pkg/txn"
)

func benchTransactions(n int) []txn.Transaction {
	txs := make([]txn.Transaction, n)
	for i := range txs {
		tx := coffee()
		tx.ID = uint64(i + 1)
		tx.Amount = txn.Amount(i * 37)
		tx.Description = strings.Repeat("d", i%200)
		txs[i] = tx
	}
	return txs
}

func BenchmarkCodecs_Encode(b *testing.B) {
	for _, n := range []int{10, 1000, 10000} {
		txs := benchTransactions(n)
		for _, c := range []Codec{NewCSVCodec(), NewTextCodec(), NewBinaryCodec()} {
			b.Run(fmt.Sprintf("%s/%d", c.Format(), n), func(b *testing.B) {
				var buf bytes.Buffer
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					buf.Reset()
					if err := c.Encode(&buf, txs); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCodecs_Decode(b *testing.B) {
	for _, n := range []int{10, 1000, 10000} {
		txs := benchTransactions(n)
		for _, c := range []Codec{NewCSVCodec(), NewTextCodec(), NewBinaryCodec()} {
			var encoded bytes.Buffer
			if err := c.Encode(&encoded, txs); err != nil {
				b.Fatal(err)
			}
			data := encoded.Bytes()

			b.Run(fmt.Sprintf("%s/%d", c.Format(), n), func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := c.Decode(bytes.NewReader(data)); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
