package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotWithIsCopyOnWrite(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s0 := EmptySnapshot()
	s1 := s0.With(Quote{Symbol: "BTCUSDT", Last: "63500.00", High: "64000", Low: "62000", ChangePercent: "-1.2", Time: ts})
	s2 := s1.With(Quote{Symbol: "ETHUSDT", Last: "3100.5", High: "3200", Low: "3000", ChangePercent: "2.0", Time: ts})

	assert.Equal(t, 0, s0.Len())
	assert.Equal(t, 1, s1.Len())
	assert.Equal(t, 2, s2.Len())

	s3 := s2.With(Quote{Symbol: "BTCUSDT", Last: "63600.00", High: "64000", Low: "62000", ChangePercent: "-1.0", Time: ts})
	btc, ok := s2.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "63500.00", btc.Last)

	btc, _ = s3.Get("BTCUSDT")
	assert.Equal(t, "63600.00", btc.Last)
	assert.Equal(t, s2.Quotes()["ETHUSDT"], s3.Quotes()["ETHUSDT"])
}

func TestSnapshotWithDefaults(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot().With(Quote{Symbol: "BTCUSDT", Last: "100"})
	q, _ := s.Get("BTCUSDT")
	assert.Equal(t, "100", q.High)
	assert.Equal(t, "100", q.Low)
	assert.Equal(t, "0", q.ChangePercent)

	// Omitted fields fall back to the previously known last price, not the
	// previous high/low.
	s = s.With(Quote{Symbol: "BTCUSDT", Last: "110", High: "120", Low: "90", ChangePercent: "10"})
	s = s.With(Quote{Symbol: "BTCUSDT", Last: "115"})
	q, _ = s.Get("BTCUSDT")
	assert.Equal(t, "115", q.Last)
	assert.Equal(t, "110", q.High)
	assert.Equal(t, "110", q.Low)
	assert.Equal(t, "0", q.ChangePercent)
}

func TestSnapshotSymbolsSorted(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot().
		With(Quote{Symbol: "SOLUSDT", Last: "1"}).
		With(Quote{Symbol: "BTCUSDT", Last: "1"}).
		With(Quote{Symbol: "ETHUSDT", Last: "1"})

	assert.Equal(t, []Symbol{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, s.Symbols())
}

func TestSnapshotQuotesIsACopy(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot().With(Quote{Symbol: "BTCUSDT", Last: "100"})
	shared := s

	quotes := s.Quotes()
	quotes["BTCUSDT"] = Quote{Symbol: "BTCUSDT", Last: "1"}
	quotes["ETHUSDT"] = Quote{Symbol: "ETHUSDT", Last: "2"}
	delete(quotes, "BTCUSDT")

	for _, snap := range []Snapshot{s, shared} {
		assert.Equal(t, 1, snap.Len())
		q, ok := snap.Get("BTCUSDT")
		require.True(t, ok)
		assert.Equal(t, "100", q.Last)
		_, ok = snap.Get("ETHUSDT")
		assert.False(t, ok)
	}
}

func TestSnapshotZeroValue(t *testing.T) {
	t.Parallel()

	var s Snapshot
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Symbols())
	_, ok := s.Get("BTCUSDT")
	assert.False(t, ok)
	assert.Equal(t, 1, s.With(Quote{Symbol: "BTCUSDT", Last: "1"}).Len())
}

func TestSnapshotMarshalJSON(t *testing.T) {
	t.Parallel()

	s := EmptySnapshot().With(Quote{Symbol: "BTCUSDT", Last: "63500.00", ChangePercent: "-1.2"})
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "63500.00", decoded["BTCUSDT"]["last"])
	assert.Equal(t, "-1.2", decoded["BTCUSDT"]["daily_change_percentage"])
}
