package feed

import (
	"strconv"
	"testing"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinanceTickerDecode(t *testing.T) {
	t.Parallel()

	dec := testDecoder()

	tests := []struct {
		name   string
		raw    string
		ok     bool
		symbol market.Symbol
		last   string
		high   string
		low    string
		pct    string
	}{
		{
			name:   "combined stream envelope",
			raw:    `{"stream":"btcusdt@ticker","data":{"e":"24hrTicker","E":1714564800000,"s":"BTCUSDT","p":"-770.00","P":"-1.2","c":"63500.00","C":1714564799999,"h":"64500.00","l":"62900.00","L":12345}}`,
			ok:     true,
			symbol: "BTCUSDT",
			last:   "63500.00",
			high:   "64500.00",
			low:    "62900.00",
			pct:    "-1.2",
		},
		{
			name:   "bare ticker, lowercase symbol",
			raw:    `{"e":"24hrTicker","s":"ethusdt","P":"2.50","c":"3100.10","h":"3200","l":"3000"}`,
			ok:     true,
			symbol: "ETHUSDT",
			last:   "3100.10",
			high:   "3200",
			low:    "3000",
			pct:    "2.50",
		},
		{
			name:   "mini ticker has no percent",
			raw:    `{"e":"24hrMiniTicker","s":"SOLUSDT","c":"150.25","o":"148.00","h":"151","l":"147"}`,
			ok:     true,
			symbol: "SOLUSDT",
			last:   "150.25",
			high:   "151",
			low:    "147",
			pct:    "",
		},
		{
			name:   "unparseable optional fields are dropped",
			raw:    `{"e":"24hrTicker","s":"BTCUSDT","c":"1.5","h":"n/a","l":"","P":"x"}`,
			ok:     true,
			symbol: "BTCUSDT",
			last:   "1.5",
		},
		{name: "not json", raw: `{{{`},
		{name: "array", raw: `[1,2,3]`},
		{name: "missing symbol", raw: `{"e":"24hrTicker","c":"1.0"}`},
		{name: "missing price", raw: `{"e":"24hrTicker","s":"BTCUSDT"}`},
		{name: "non numeric price", raw: `{"e":"24hrTicker","s":"BTCUSDT","c":"NaN?"}`},
		{name: "other event type", raw: `{"e":"aggTrade","s":"BTCUSDT","p":"1.0"}`},
		{name: "subscription ack", raw: `{"result":null,"id":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := dec.Decode([]byte(tt.raw))
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.symbol, q.Symbol)
			assert.Equal(t, tt.last, q.Last)
			assert.Equal(t, tt.high, q.High)
			assert.Equal(t, tt.low, q.Low)
			assert.Equal(t, tt.pct, q.ChangePercent)
			assert.Equal(t, SourceBinance, q.Source)
		})
	}
}

func TestBinanceTickerTimestamp(t *testing.T) {
	t.Parallel()

	dec := BinanceTicker{Source: "test", Now: func() time.Time { return fixedNow }}

	q, ok := dec.Decode([]byte(`{"e":"24hrTicker","E":1714564740000,"s":"BTCUSDT","c":"1"}`))
	require.True(t, ok)
	assert.Equal(t, fixedNow.Add(-time.Minute), q.Time)
	assert.Equal(t, "test", q.Source)

	// No event time: decode time.
	q, ok = dec.Decode([]byte(`{"e":"24hrTicker","s":"BTCUSDT","c":"1"}`))
	require.True(t, ok)
	assert.Equal(t, fixedNow, q.Time)

	// Event time far in the future is not trusted.
	future := fixedNow.Add(time.Hour).UnixMilli()
	q, ok = dec.Decode([]byte(`{"e":"24hrTicker","E":` + strconv.FormatInt(future, 10) + `,"s":"BTCUSDT","c":"1"}`))
	require.True(t, ok)
	assert.Equal(t, fixedNow, q.Time)
}

func TestBinanceRESTTickerDecode(t *testing.T) {
	t.Parallel()

	dec := BinanceRESTTicker{Now: func() time.Time { return fixedNow }}

	q, ok := dec.Decode([]byte(`{"symbol":"BTCUSDT","priceChange":"-770.00","priceChangePercent":"-1.2","lastPrice":"63500.00","highPrice":"64500.00","lowPrice":"62900.00","closeTime":1714564800000}`))
	require.True(t, ok)
	assert.Equal(t, market.Quote{
		Symbol:        "BTCUSDT",
		Last:          "63500.00",
		High:          "64500.00",
		Low:           "62900.00",
		ChangePercent: "-1.2",
		Time:          fixedNow,
		Source:        SourceBinance,
	}, q)

	_, ok = dec.Decode([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	assert.False(t, ok)
}
