package txn

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		in      string
		want    Amount
		wantErr error
	}{
		{in: "-12.50", want: -1250},
		{in: "12.5", want: 1250},
		{in: "7", want: 700},
		{in: "0.01", want: 1},
		{in: " 100.00 ", want: 10000},
		{in: "12.500", want: 1250},
		{in: "+3.10", want: 310},
		{in: "92233720368547758.07", want: 9223372036854775807},
		{in: "92233720368547758.08", wantErr: ErrAmountRange},
		{in: "1.005", wantErr: ErrAmountPrecision},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "12,50", wantErr: ErrInvalidAmount},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "1.5e1", want: 1500},
		{in: "1250e-2", want: 1250},
		{in: "-1e16", want: -1000000000000000000},
		{in: "1e17", wantErr: ErrAmountRange},
		{in: "0e50000000", want: 0},
		{in: "1e50000000", wantErr: ErrAmountRange},
		{in: "1e-50000000", wantErr: ErrAmountPrecision},
		{in: "100e-4", want: 1},
		{in: "101e-4", wantErr: ErrAmountPrecision},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			start := time.Now()
			got, err := ParseAmount(tc.in)
			assert.Less(t, time.Since(start), time.Second)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				var fe *FieldError
				require.ErrorAs(t, err, &fe)
				assert.Equal(t, FieldAmount, fe.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "-12.50", Amount(-1250).String())
	assert.Equal(t, "0.00", Amount(0).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "-0.05", Amount(-5).String())
	assert.Equal(t, "1234567.89", Amount(123456789).String())
}

func TestAmount_StringRoundTrip(t *testing.T) {
	for _, a := range []Amount{0, 1, -1, 99, -1250, 10000, 9223372036854775807, -9223372036854775808} {
		got, err := ParseAmount(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got, "amount %d", int64(a))
	}
}

func TestDate(t *testing.T) {
	d := NewDate(2024, time.January, 15)
	assert.Equal(t, "2024-01-15", d.String())
	assert.Equal(t, Date(0), NewDate(1970, time.January, 1))
	assert.Equal(t, Date(-1), NewDate(1969, time.December, 31))

	parsed, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	for _, bad := range []string{"", "2024-13-01", "2024-02-30", "15.01.2024", "2024-1-5"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}

	assert.True(t, NewDate(1, time.January, 1).Valid())
	assert.True(t, NewDate(9999, time.December, 31).Valid())
	assert.False(t, NewDate(10000, time.January, 1).Valid())
	assert.False(t, (NewDate(1, time.January, 1) - 1).Valid())

	// About 2^32 days past 2000-01-01, which would wrap to a valid int32 day.
	assert.Equal(t, Date(math.MaxInt32), NewDate(2000+11_759_301, time.January, 1))
	assert.False(t, NewDate(2000+11_759_301, time.January, 1).Valid())
	assert.Equal(t, Date(math.MinInt32), NewDate(-11_759_301, time.January, 1))
	assert.False(t, NewDate(-11_759_301, time.January, 1).Valid())
}

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses() {
		got, err := ParseStatus(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got)

	_, err = ParseStatus("SUCCESS")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	assert.False(t, Status(0).Valid())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestParseCurrency(t *testing.T) {
	code, err := ParseCurrency(" USD ")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	for _, bad := range []string{"", "usd", "EURO", "U1D", "€"} {
		_, err := ParseCurrency(bad)
		assert.ErrorIs(t, err, ErrInvalidCurrency, bad)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), id)

	for _, bad := range []string{"", "-1", "1.0", "x", "18446744073709551616"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{
		ID:          1,
		Date:        NewDate(2024, time.January, 15),
		Amount:      -1250,
		Currency:    "USD",
		Description: "Coffee",
		Status:      StatusCompleted,
	}
	require.NoError(t, valid.Validate())

	testCases := map[string]struct {
		mutate func(tx *Transaction)
		field  Field
	}{
		"bad currency":   {func(tx *Transaction) { tx.Currency = "us" }, FieldCurrency},
		"zero status":    {func(tx *Transaction) { tx.Status = 0 }, FieldStatus},
		"date too late":  {func(tx *Transaction) { tx.Date = NewDate(10000, time.January, 1) }, FieldDate},
		"broken utf8":    {func(tx *Transaction) { tx.Description = "\xff" }, FieldDescription},
		"empty currency": {func(tx *Transaction) { tx.Currency = "" }, FieldCurrency},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)
			var fe *FieldError
			require.ErrorAs(t, tx.Validate(), &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestTransaction_Value(t *testing.T) {
	tx := Transaction{
		ID:          42,
		Date:        NewDate(2023, time.March, 9),
		Amount:      505,
		Currency:    "EUR",
		Description: "Lunch, with \"friends\"",
		Status:      StatusPending,
	}
	assert.Equal(t, "42", tx.Value(FieldID))
	assert.Equal(t, "2023-03-09", tx.Value(FieldDate))
	assert.Equal(t, "5.05", tx.Value(FieldAmount))
	assert.Equal(t, "EUR", tx.Value(FieldCurrency))
	assert.Equal(t, "Lunch, with \"friends\"", tx.Value(FieldDescription))
	assert.Equal(t, "PENDING", tx.Value(FieldStatus))
}

func TestParseField(t *testing.T) {
	f, err := ParseField("Description")
	require.NoError(t, err)
	assert.Equal(t, FieldDescription, f)

	_, err = ParseField("colour")
	assert.Error(t, err)
}
