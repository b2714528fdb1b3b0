package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/feed"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestTradeLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")

	out := execute(t, "--db", db, "trade", "add",
		"--symbol", "btcusdt", "--direction", "long",
		"--open-price", "60000", "--quantity", "0.5", "--stop", "58000",
		"--open-time", "2024-04-10T09:00:00Z", "--tag", "Breakout,swing",
		"--notes", "retest of the range high")
	assert.Contains(t, out, "BTCUSDT long @ 60000")

	store, err := journal.NewSQLite(db)
	require.NoError(t, err)
	trades, err := store.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.Len(t, trades, 1)
	id := trades[0].ID

	out = execute(t, "--db", db, "trade", "close", id, "--price", "63500", "--time", "2024-04-11T09:00:00Z")
	assert.Contains(t, out, "P/L 1750.00")

	out = execute(t, "--db", db, "trade", "show", id)
	assert.Contains(t, out, "** CLOSED BTCUSDT LONG")
	assert.Contains(t, out, ":REALIZED_PL: 1750.00")
	assert.Contains(t, out, ":R_MULTIPLE: 1.75")
	assert.Contains(t, out, "retest of the range high")

	out = execute(t, "--db", db, "trade", "list", "--status", "closed", "--tag", "breakout")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "breakout,swing")

	csvPath := filepath.Join(dir, "trades.csv")
	execute(t, "--db", db, "export", "csv", "-o", csvPath)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), id+",BTCUSDT,long,0.5,60000")

	out = execute(t, "--db", db, "trade", "rm", id)
	assert.Contains(t, out, "Deleted "+id)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradejournal.yaml")

	out := execute(t, "config", "init", "-o", path)
	assert.Contains(t, out, "Created default configuration")

	out = execute(t, "config", "validate", "-f", path)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Feed: ws (wss://stream.binance.com:9443/stream)")
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "tradejournal version "+version)
}

func TestNewFeed(t *testing.T) {
	fc := config.Default().Feed

	tr, dec, err := newFeed(fc)
	require.NoError(t, err)
	assert.IsType(t, &feed.WebsocketTransport{}, tr)
	assert.IsType(t, feed.BinanceTicker{}, dec)

	fc.Transport = config.TransportREST
	tr, dec, err = newFeed(fc)
	require.NoError(t, err)
	rest, ok := tr.(*feed.RESTTransport)
	require.True(t, ok)
	assert.Equal(t, "https://api.binance.com", rest.BaseURL)
	assert.IsType(t, feed.BinanceRESTTicker{}, dec)

	fc.Transport = "smoke"
	_, _, err = newFeed(fc)
	assert.Error(t, err)
}
