package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/ssargent/ypbank/pkg/txn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBinary(t *testing.T, txs []txn.Transaction) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewBinaryCodec().Encode(&buf, txs))
	return buf.Bytes()
}

func TestBinaryCodec_EncodeCoffee(t *testing.T) {
	data := encodeBinary(t, []txn.Transaction{coffee()})

	want := []byte{'Y', 'P', 'B', 'N'}
	// count
	want = append(want, 0x00, 0x00, 0x00, 0x01)
	// id
	want = append(want, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01)
	// 2024-01-15 is day 19737
	want = append(want, 0x00, 0x00, 0x4d, 0x19)
	// -1250
	want = append(want, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfb, 0x1e)
	want = append(want, 'U', 'S', 'D')
	// COMPLETED
	want = append(want, 0x02)
	want = append(want, 0x00, 0x06)
	want = append(want, "Coffee"...)
	assert.Equal(t, want, data)
	assert.Len(t, data, HeaderSize+FixedRecordSize+len("Coffee"))
}

func TestBinaryCodec_CountFromRecords(t *testing.T) {
	data := encodeBinary(t, sampleTransactions())
	assert.Equal(t, uint32(len(sampleTransactions())), binary.BigEndian.Uint32(data[4:8]))
}

func TestBinaryCodec_CurrencyPadding(t *testing.T) {
	tx := coffee()
	tx.Currency = "GB"
	data := encodeBinary(t, []txn.Transaction{tx})
	assert.Equal(t, []byte{'G', 'B', 0x00}, data[HeaderSize+20:HeaderSize+23])

	got, err := NewBinaryCodec().Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "GB", got[0].Currency)
}

func TestBinaryCodec_InvalidMagic(t *testing.T) {
	valid := encodeBinary(t, sampleTransactions())

	for i := 0; i < len(Magic); i++ {
		data := bytes.Clone(valid)
		data[i] ^= 0xFF

		got, err := NewBinaryCodec().Decode(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrInvalidMagicNumber, "byte %d", i)
		assert.Empty(t, got)
	}

	_, err := NewBinaryCodec().Decode(strings.NewReader("YPBM\x00\x00\x00\x00"))
	assert.ErrorIs(t, err, ErrInvalidMagicNumber)
}

func TestBinaryCodec_Truncation(t *testing.T) {
	valid := encodeBinary(t, sampleTransactions())

	for cut := 0; cut < len(valid); cut++ {
		got, err := NewBinaryCodec().Decode(bytes.NewReader(valid[:cut]))
		require.ErrorIs(t, err, ErrUnexpectedEOF, "cut at %d", cut)
		assert.Nil(t, got, "cut at %d", cut)
	}

	got, err := NewBinaryCodec().Decode(bytes.NewReader(valid))
	require.NoError(t, err)
	assert.Equal(t, sampleTransactions(), got)
}

func TestBinaryCodec_HugeCountWithoutRecords(t *testing.T) {
	data := append(bytes.Clone(Magic[:]), 0xFF, 0xFF, 0xFF, 0xFF)

	_, err := NewBinaryCodec().Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Record)
	assert.Equal(t, int64(HeaderSize), ce.Offset)
}

func TestBinaryCodec_InvalidStatusTag(t *testing.T) {
	for _, tag := range []byte{0x00, 0x05, 0xFF} {
		data := encodeBinary(t, []txn.Transaction{coffee()})
		data[HeaderSize+23] = tag

		_, err := NewBinaryCodec().Decode(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrInvalidStatusTag)

		var ce *Error
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, int64(HeaderSize+23), ce.Offset)
		assert.Equal(t, "status", ce.Field)
	}
}

func TestBinaryCodec_EncodeInvalidStatus(t *testing.T) {
	tx := coffee()
	tx.Status = 0

	err := NewBinaryCodec().Encode(&bytes.Buffer{}, []txn.Transaction{tx})
	assert.ErrorIs(t, err, ErrInvalidStatusTag)
}

func TestBinaryCodec_MalformedLength(t *testing.T) {
	data := encodeBinary(t, []txn.Transaction{coffee()})

	_, err := NewBinaryCodec(WithMaxDescriptionBytes(4)).Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrMalformedLength)

	err = NewBinaryCodec(WithMaxDescriptionBytes(4)).Encode(&bytes.Buffer{}, []txn.Transaction{coffee()})
	require.ErrorIs(t, err, ErrMalformedLength)

	long := coffee()
	long.Description = strings.Repeat("x", MaxDescriptionBytes+1)
	err = NewBinaryCodec().Encode(&bytes.Buffer{}, []txn.Transaction{long})
	require.ErrorIs(t, err, ErrMalformedLength)

	long.Description = strings.Repeat("x", MaxDescriptionBytes)
	data = encodeBinary(t, []txn.Transaction{long})
	got, err := NewBinaryCodec().Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, got[0].Description, MaxDescriptionBytes)
}

func TestBinaryCodec_TrailingBytes(t *testing.T) {
	data := append(encodeBinary(t, []txn.Transaction{coffee()}), 0x00)

	_, err := NewBinaryCodec().Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "trailing bytes")
}

func TestBinaryCodec_TypedFieldErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(data []byte)
		field  string
		offset int64
	}{
		{
			name:   "lower-case currency",
			mutate: func(data []byte) { copy(data[HeaderSize+20:], "usd") },
			field:  "currency",
			offset: HeaderSize + 20,
		},
		{
			name:   "empty currency",
			mutate: func(data []byte) { copy(data[HeaderSize+20:], []byte{0, 0, 0}) },
			field:  "currency",
			offset: HeaderSize + 20,
		},
		{
			name:   "date beyond year 9999",
			mutate: func(data []byte) { binary.BigEndian.PutUint32(data[HeaderSize+8:], 0x7FFFFFFF) },
			field:  "date",
			offset: HeaderSize + 8,
		},
		{
			name:   "invalid utf-8 description",
			mutate: func(data []byte) { data[len(data)-1] = 0xFF },
			field:  "description",
			offset: HeaderSize + FixedRecordSize,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := encodeBinary(t, []txn.Transaction{coffee()})
			tc.mutate(data)

			_, err := NewBinaryCodec().Decode(bytes.NewReader(data))
			require.ErrorIs(t, err, ErrTypeParse)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
			assert.Equal(t, 1, ce.Record)
			assert.Equal(t, tc.offset, ce.Offset)
			assert.Contains(t, err.Error(), fmt.Sprintf("offset %d", tc.offset))
		})
	}
}

func TestWithMaxDescriptionBytes_Clamps(t *testing.T) {
	assert.Equal(t, 0, NewBinaryCodec(WithMaxDescriptionBytes(-5)).maxDescriptionBytes)
	assert.Equal(t, MaxDescriptionBytes, NewBinaryCodec(WithMaxDescriptionBytes(1<<20)).maxDescriptionBytes)
	assert.Equal(t, 128, NewBinaryCodec(WithMaxDescriptionBytes(128)).maxDescriptionBytes)
}
