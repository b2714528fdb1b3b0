package feed

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rustyeddy/tradejournal/market"
)

// State is the lifecycle of one subscription session.
type State int32

const (
	Idle State = iota
	Connecting
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is one lifetime of one connection. Only its run goroutine touches
// the accumulating snapshot.
type session struct {
	id       uint64
	symbols  []market.Symbol
	allowed  *market.SymbolSet
	onUpdate func(market.Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}

	mu     sync.Mutex
	stream Stream
	closed bool
}

func newSession(id uint64, symbols []market.Symbol, onUpdate func(market.Snapshot)) *session {
	ctx, cancel := context.WithCancel(context.Background())
	allowed := market.NewSymbolSet()
	for _, s := range symbols {
		allowed.Insert(string(s))
	}
	return &session{
		id:       id,
		symbols:  symbols,
		allowed:  allowed,
		onUpdate: onUpdate,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (s *session) State() State {
	return State(s.state.Load())
}

// advance moves the state forward. Closed is terminal.
func (s *session) advance(to State) {
	for {
		cur := s.state.Load()
		if State(cur) == Closed || State(cur) >= to {
			return
		}
		if s.state.CompareAndSwap(cur, int32(to)) {
			return
		}
	}
}

// attach records the opened stream. It returns false when the session was
// closed while the stream was being opened; the caller then owns st.
func (s *session) attach(st Stream) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.stream = st
	return true
}

// close is safe from any goroutine and any state, any number of times.
func (s *session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	st := s.stream
	s.mu.Unlock()

	s.advance(Closed)
	s.cancel()
	if st != nil {
		_ = st.Close()
	}
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
