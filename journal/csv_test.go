package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	btc := longBTC()
	btc.ID = "T1"
	btc.Symbol = "BTCUSDT"
	btc.Tags = []string{"breakout", "swing"}
	eth := shortETH()
	eth.ID = "T2"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Trade{btc, eth}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"trade_id", "symbol", "direction", "quantity", "open_price", "open_time",
		"close_price", "close_time", "stop_loss", "notes", "tags",
	}, rows[0])
	assert.Equal(t, []string{
		"T1", "BTCUSDT", "long", "0.5", "60000", "2024-04-10T09:00:00Z",
		"", "", "58000", "breakout retest", "breakout;swing",
	}, rows[1])
	assert.Equal(t, []string{
		"T2", "ETHUSDT", "short", "2", "3200", "2024-04-10T10:00:00Z",
		"3100", "2024-04-10T14:00:00Z", "3300", "", "fade",
	}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
