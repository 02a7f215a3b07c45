package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecordAndRecent(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	defer r.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trades := []TradeRecord{
		{ID: "t-1", Symbol: "ABC", Action: "buy", Quantity: 10, Price: 50, TotalValue: 500, ExecutedAt: base},
		{ID: "t-2", Symbol: "ABC", Action: "sell", Quantity: 4, Price: 55, TotalValue: 220, ExecutedAt: base.Add(time.Minute)},
		{ID: "t-3", Symbol: "XYZ", Action: "buy", Quantity: 1, Price: 9.5, TotalValue: 9.5, ExecutedAt: base.Add(2 * time.Minute)},
	}
	for i := range trades {
		require.NoError(t, r.Record(&trades[i]))
	}

	recent, err := r.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t-3", recent[0].ID, "newest first")
	assert.Equal(t, "t-2", recent[1].ID)
	assert.Equal(t, "sell", recent[1].Action)
	assert.Equal(t, base.Add(time.Minute), recent[1].ExecutedAt)
}

func TestSQLiteRecentEmpty(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	defer r.Close()

	recent, err := r.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
