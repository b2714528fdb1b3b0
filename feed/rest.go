package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/tradejournal/market"
)

// DefaultRESTURL is Binance's public spot REST API.
const DefaultRESTURL = "https://api.binance.com"

var errStreamClosed = errors.New("feed: stream closed")

// RESTTransport polls the 24h ticker endpoint for the whole symbol set and
// yields one raw message per symbol per poll. Pair it with BinanceRESTTicker.
type RESTTransport struct {
	BaseURL  string // defaults to DefaultRESTURL
	HTTP     *http.Client
	Interval time.Duration // defaults to 5s
}

func (t *RESTTransport) Open(ctx context.Context, symbols []market.Symbol) (Stream, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("feed: no symbols to poll")
	}

	base := t.BaseURL
	if base == "" {
		base = DefaultRESTURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("feed: parse rest url: %w", err)
	}
	u.Path = "/api/v3/ticker/24hr"

	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = string(s)
	}
	list, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("symbols", string(list))
	u.RawQuery = q.Encode()

	httpClient := t.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	interval := t.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s := &restStream{
		url:      u.String(),
		http:     httpClient,
		interval: interval,
		closed:   make(chan struct{}),
	}
	// The first poll doubles as the connection check.
	if err := s.poll(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

type restStream struct {
	url      string
	http     *http.Client
	interval time.Duration

	pending []json.RawMessage
	closed  chan struct{}
	once    sync.Once
}

func (s *restStream) Next(ctx context.Context) ([]byte, error) {
	for len(s.pending) == 0 {
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-s.closed:
			timer.Stop()
			return nil, errStreamClosed
		case <-timer.C:
		}
		if err := s.poll(ctx); err != nil {
			return nil, err
		}
	}

	msg := s.pending[0]
	s.pending = s.pending[1:]
	return msg, nil
}

func (s *restStream) poll(ctx context.Context) error {
	select {
	case <-s.closed:
		return errStreamClosed
	default:
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("feed: poll: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("feed: poll http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return fmt.Errorf("feed: poll: bad json: %w", err)
	}
	s.pending = append(s.pending, items...)
	return nil
}

func (s *restStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
