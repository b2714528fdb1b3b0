package feed

import (
	"encoding/json"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/shopspring/decimal"
)

// SourceBinance tags quotes that came from Binance.
const SourceBinance = "binance"

// maxClockSkew bounds how far in the future a feed timestamp may be before
// it is replaced by the local decode time.
const maxClockSkew = time.Minute

// binanceTicker is the payload of the <symbol>@ticker and <symbol>@miniTicker
// streams. Binance reuses letters in both cases ("c"/"C", "l"/"L", "p"/"P");
// every variant is declared so encoding/json never folds one onto the other.
type binanceTicker struct {
	EventType     string `json:"e"`
	EventTime     int64  `json:"E"`
	Symbol        string `json:"s"`
	PriceChange   string `json:"p"`
	ChangePercent string `json:"P"`
	Last          string `json:"c"`
	CloseTime     int64  `json:"C"`
	High          string `json:"h"`
	Low           string `json:"l"`
	LastTradeID   int64  `json:"L"`
}

// combinedMsg wraps every message on a /stream?streams=... connection.
type combinedMsg struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// BinanceTicker decodes Binance websocket 24h ticker messages, either wrapped
// in a combined-stream envelope or bare.
type BinanceTicker struct {
	Source string
	Now    func() time.Time
}

func (d BinanceTicker) Decode(raw []byte) (market.Quote, bool) {
	var env combinedMsg
	if err := json.Unmarshal(raw, &env); err != nil {
		return market.Quote{}, false
	}
	payload := raw
	if len(env.Data) > 0 {
		payload = env.Data
	}

	var t binanceTicker
	if err := json.Unmarshal(payload, &t); err != nil {
		return market.Quote{}, false
	}
	switch t.EventType {
	case "", "24hrTicker", "24hrMiniTicker":
	default:
		return market.Quote{}, false
	}

	return buildQuote(t.Symbol, t.Last, t.High, t.Low, t.ChangePercent, t.EventTime, d.source(), d.now())
}

func (d BinanceTicker) source() string {
	if d.Source == "" {
		return SourceBinance
	}
	return d.Source
}

func (d BinanceTicker) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now()
}

// binanceRESTTicker is one element of GET /api/v3/ticker/24hr.
type binanceRESTTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	CloseTime          int64  `json:"closeTime"`
}

// BinanceRESTTicker decodes the elements RESTTransport yields from the
// 24h ticker endpoint.
type BinanceRESTTicker struct {
	Source string
	Now    func() time.Time
}

func (d BinanceRESTTicker) Decode(raw []byte) (market.Quote, bool) {
	var t binanceRESTTicker
	if err := json.Unmarshal(raw, &t); err != nil {
		return market.Quote{}, false
	}
	src := d.Source
	if src == "" {
		src = SourceBinance
	}
	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	return buildQuote(t.Symbol, t.LastPrice, t.HighPrice, t.LowPrice, t.PriceChangePercent, t.CloseTime, src, now)
}

func buildQuote(symbol, last, high, low, pct string, eventMillis int64, source string, now time.Time) (market.Quote, bool) {
	sym := market.NormalizeSymbol(symbol)
	if sym == "" || !isDecimal(last) {
		return market.Quote{}, false
	}

	return market.Quote{
		Symbol:        sym,
		Last:          last,
		High:          optionalDecimal(high),
		Low:           optionalDecimal(low),
		ChangePercent: optionalDecimal(pct),
		Time:          feedTime(eventMillis, now),
		Source:        source,
	}, true
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

// optionalDecimal drops values that do not parse, leaving the field to the
// snapshot's defaults.
func optionalDecimal(s string) string {
	if !isDecimal(s) {
		return ""
	}
	return s
}

// feedTime trusts the feed's clock unless it is missing or too far ahead.
func feedTime(millis int64, now time.Time) time.Time {
	if millis <= 0 {
		return now
	}
	t := time.UnixMilli(millis).UTC()
	if t.After(now.Add(maxClockSkew)) {
		return now
	}
	return t
}
