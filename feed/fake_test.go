package feed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type fakeStream struct {
	symbols []market.Symbol
	msgs    chan []byte
	closed  chan struct{}
	once    sync.Once
}

func (s *fakeStream) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, errStreamClosed
	case m, ok := <-s.msgs:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	}
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// send hands msg to the reader, failing the test if nobody reads it.
func (s *fakeStream) send(t *testing.T, msg []byte) {
	t.Helper()
	select {
	case s.msgs <- msg:
	case <-time.After(waitFor):
		t.Fatal("stream reader did not take message")
	}
}

type fakeTransport struct {
	openErr error
	block   chan struct{}
	opened  chan *fakeStream

	mu    sync.Mutex
	calls int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{opened: make(chan *fakeStream, 16)}
}

func (f *fakeTransport) Open(ctx context.Context, symbols []market.Symbol) (Stream, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeStream{
		symbols: symbols,
		msgs:    make(chan []byte),
		closed:  make(chan struct{}),
	}
	f.opened <- s
	return s, nil
}

func (f *fakeTransport) openCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTransport) next(t *testing.T) *fakeStream {
	t.Helper()
	select {
	case s := <-f.opened:
		return s
	case <-time.After(waitFor):
		t.Fatal("no stream opened")
		return nil
	}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testDecoder() Decoder {
	return BinanceTicker{Now: func() time.Time { return fixedNow }}
}

func tickerMsg(sym, last, pct string) []byte {
	return []byte(fmt.Sprintf(
		`{"stream":"%s@ticker","data":{"e":"24hrTicker","E":1714564800000,"s":"%s","p":"-10.00","P":"%s","c":"%s","h":"64000.00","l":"62000.00","L":42}}`,
		strings.ToLower(sym), sym, pct, last))
}

type recorder struct {
	ch chan market.Snapshot
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan market.Snapshot, 64)}
}

func (r *recorder) onUpdate(s market.Snapshot) { r.ch <- s }

func (r *recorder) next(t *testing.T) market.Snapshot {
	t.Helper()
	select {
	case s := <-r.ch:
		return s
	case <-time.After(waitFor):
		t.Fatal("no update delivered")
		return market.Snapshot{}
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case s := <-r.ch:
		t.Fatalf("unexpected update: %v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestManager(t *testing.T, tr Transport) *Manager {
	t.Helper()
	m := NewManager(tr, testDecoder(), nil)
	t.Cleanup(m.Close)
	return m
}

func symbols(s ...string) []market.Symbol {
	out := make([]market.Symbol, len(s))
	for i, v := range s {
		out[i] = market.Symbol(v)
	}
	return out
}

func requireState(t *testing.T, m *Manager, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return m.State() == want }, waitFor, 5*time.Millisecond,
		"state never became %s", want)
}
