package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rustyeddy/tradejournal/market"
)

// DefaultStreamURL is Binance's combined-stream endpoint.
const DefaultStreamURL = "wss://stream.binance.com:9443/stream"

const closeGrace = time.Second

// WebsocketTransport opens one combined websocket stream for the whole symbol
// set: <URL>?streams=btcusdt@ticker/ethusdt@ticker.
type WebsocketTransport struct {
	URL          string // defaults to DefaultStreamURL
	StreamSuffix string // defaults to "@ticker"
	Dialer       *websocket.Dialer
	Header       http.Header
}

// StreamURL builds the single subscription URL for symbols.
func (t *WebsocketTransport) StreamURL(symbols []market.Symbol) (string, error) {
	base := t.URL
	if base == "" {
		base = DefaultStreamURL
	}
	suffix := t.StreamSuffix
	if suffix == "" {
		suffix = "@ticker"
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("feed: parse stream url: %w", err)
	}

	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = strings.ToLower(string(s)) + suffix
	}
	q := u.Query()
	q.Set("streams", strings.Join(names, "/"))
	// Binance expects the literal "/" and "@" separators.
	u.RawQuery = strings.NewReplacer("%2F", "/", "%40", "@").Replace(q.Encode())
	return u.String(), nil
}

func (t *WebsocketTransport) Open(ctx context.Context, symbols []market.Symbol) (Stream, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("feed: no symbols to stream")
	}
	wsURL, err := t.StreamURL(symbols)
	if err != nil {
		return nil, err
	}

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, t.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("feed: dial %s: %w (http %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("feed: dial %s: %w", wsURL, err)
	}
	return &wsStream{conn: conn}, nil
}

type wsStream struct {
	conn *websocket.Conn
	once sync.Once
	err  error
}

func (s *wsStream) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		typ, msg, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return msg, nil
		}
	}
}

func (s *wsStream) Close() error {
	s.once.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeGrace))
		s.err = s.conn.Close()
	})
	return s.err
}
