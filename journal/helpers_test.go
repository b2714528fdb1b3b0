package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

var t0 = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func longBTC() Trade {
	return Trade{
		Symbol:    "btcusdt",
		Direction: Long,
		Quantity:  dec("0.5"),
		OpenPrice: dec("60000"),
		OpenTime:  t0,
		StopLoss:  nd("58000"),
		Notes:     "breakout retest",
		Tags:      []string{"Breakout", "swing"},
	}
}

func shortETH() Trade {
	return Trade{
		Symbol:     "ETHUSDT",
		Direction:  Short,
		Quantity:   dec("2"),
		OpenPrice:  dec("3200"),
		OpenTime:   t0.Add(time.Hour),
		ClosePrice: nd("3100"),
		CloseTime:  t0.Add(5 * time.Hour),
		StopLoss:   nd("3300"),
		Tags:       []string{"fade"},
	}
}
