package compare_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/txn"
)

func TestCompare_AcrossFormats(t *testing.T) {
	records := []txn.Transaction{
		{
			ID:          1,
			Date:        txn.NewDate(2024, time.January, 15),
			Amount:      -1250,
			Currency:    "USD",
			Description: "Coffee",
			Status:      txn.StatusCompleted,
		},
		{
			ID:          42,
			Date:        txn.NewDate(2024, time.March, 3),
			Amount:      1999,
			Currency:    "EUR",
			Description: `Books, "used"`,
			Status:      txn.StatusPending,
		},
	}

	decoded := make(map[codec.Format][]txn.Transaction)
	for _, f := range codec.Formats() {
		c, err := codec.New(f)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, c.Encode(&buf, records))
		got, err := c.Decode(&buf)
		require.NoError(t, err)
		decoded[f] = got
	}

	for _, fa := range codec.Formats() {
		for _, fb := range codec.Formats() {
			report := compare.Compare(decoded[fa], decoded[fb], compare.Options{Verbose: true})
			assert.True(t, report.Equal(), "%s vs %s", fa, fb)
			assert.Equal(t, 2, report.Identical, "%s vs %s", fa, fb)
			assert.Empty(t, report.Entries)
		}
	}
}
