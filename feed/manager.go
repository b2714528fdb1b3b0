package feed

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/tradejournal/market"
	"go.uber.org/zap"
)

// update is one pending delivery, tagged with the session that produced it.
type update struct {
	session uint64
	snap    market.Snapshot
	fn      func(market.Snapshot)
}

// Manager owns at most one live feed connection, matching the symbol set of
// the most recent Subscribe call.
//
// Every callback runs on a single dispatcher goroutine, in the order the
// messages arrived. A delivery is dropped unless its session is still the
// active one when it reaches the front of the queue, so once a new session
// has been started nothing from the superseded one can follow its updates.
// Callbacks may call Subscribe or an unsubscribe handle.
type Manager struct {
	transport Transport
	decoder   Decoder
	log       *zap.Logger

	mu       sync.Mutex
	nextID   uint64
	activeID uint64
	active   *session
	queue    []update
	closed   bool

	signal chan struct{}
	quit   chan struct{}
	wg     sync.WaitGroup
}

func NewManager(t Transport, d Decoder, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		transport: t,
		decoder:   d,
		log:       log,
		signal:    make(chan struct{}, 1),
		quit:      make(chan struct{}),
	}
	m.wg.Add(1)
	go m.dispatch()
	return m
}

// Subscribe replaces any current session with one for symbols and returns a
// handle that closes it.
//
// With no symbols no connection is opened and onUpdate receives a single
// empty Snapshot. Otherwise onUpdate receives the full accumulated Snapshot
// after every decoded message. Connection failures are not reported; they
// show up as an absence of updates and a Closed State. There is no retry.
func (m *Manager) Subscribe(symbols []market.Symbol, onUpdate func(market.Snapshot)) (unsubscribe func()) {
	symbols = market.Normalize(symbols)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.log.Warn("subscribe on closed manager")
		return func() {}
	}

	old := m.active
	m.nextID++
	id := m.nextID
	m.activeID = id
	m.active = nil

	if len(symbols) == 0 {
		m.push(update{session: id, snap: market.EmptySnapshot(), fn: onUpdate})
		m.mu.Unlock()
		if old != nil {
			old.close()
		}
		m.log.Debug("subscribed to empty symbol set", zap.Uint64("session", id))
		return func() {}
	}

	s := newSession(id, symbols, onUpdate)
	s.advance(Connecting)
	m.active = s
	m.mu.Unlock()

	// The old session is closed before the new one starts reading.
	if old != nil {
		old.close()
	}

	m.log.Info("subscribing",
		zap.Uint64("session", id),
		zap.Stringers("symbols", symbols),
	)
	go m.run(s)

	var once sync.Once
	return func() {
		once.Do(func() { m.unsubscribe(s) })
	}
}

func (m *Manager) unsubscribe(s *session) {
	m.mu.Lock()
	if m.active == s {
		m.active = nil
		// Nothing queued for s may be delivered after this point.
		m.nextID++
		m.activeID = m.nextID
	}
	m.mu.Unlock()

	s.close()
	m.log.Debug("unsubscribed", zap.Uint64("session", s.id))
}

// State reports the active session's state, or Idle when there is none.
func (m *Manager) State() State {
	m.mu.Lock()
	s := m.active
	m.mu.Unlock()
	if s == nil {
		return Idle
	}
	return s.State()
}

// Close tears down the active session and stops the dispatcher. Pending
// deliveries are discarded.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	s := m.active
	m.active = nil
	m.activeID = 0
	m.queue = nil
	m.mu.Unlock()

	if s != nil {
		s.close()
		<-s.done
	}
	close(m.quit)
	m.wg.Wait()
}

// run opens the session's stream and folds its messages until it ends.
func (m *Manager) run(s *session) {
	defer close(s.done)
	defer s.close()

	log := m.log.With(zap.Uint64("session", s.id))

	st, err := m.transport.Open(s.ctx, s.symbols)
	if err != nil {
		if s.ctx.Err() == nil {
			log.Warn("feed connect failed", zap.Error(err))
		}
		return
	}
	if !s.attach(st) {
		_ = st.Close()
		return
	}
	s.advance(Streaming)
	log.Info("feed connected")

	snap := market.EmptySnapshot()
	for {
		raw, err := st.Next(s.ctx)
		if err != nil {
			if !s.isClosed() {
				log.Warn("feed dropped", zap.Error(err))
			}
			return
		}

		q, ok := m.decode(raw)
		if !ok {
			log.Debug("dropping undecodable message", zap.Int("bytes", len(raw)))
			continue
		}
		if !s.allowed.Include(q.Symbol) {
			log.Debug("dropping quote for unsubscribed symbol", zap.Stringer("symbol", q.Symbol))
			continue
		}

		snap = snap.With(q)

		m.mu.Lock()
		if m.activeID == s.id {
			m.push(update{session: s.id, snap: snap, fn: s.onUpdate})
		}
		m.mu.Unlock()
	}
}

// decode never lets a decoder fault escape into the read loop.
func (m *Manager) decode(raw []byte) (q market.Quote, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("decoder panic", zap.String("panic", fmt.Sprint(r)))
			q, ok = market.Quote{}, false
		}
	}()
	return m.decoder.Decode(raw)
}

// push appends to the delivery queue. m.mu must be held.
func (m *Manager) push(u update) {
	m.queue = append(m.queue, u)
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *Manager) dispatch() {
	defer m.wg.Done()
	for {
		select {
		case <-m.quit:
			return
		case <-m.signal:
		}

		for {
			m.mu.Lock()
			if len(m.queue) == 0 || m.closed {
				m.mu.Unlock()
				break
			}
			u := m.queue[0]
			m.queue[0] = update{}
			m.queue = m.queue[1:]
			current := u.session == m.activeID
			m.mu.Unlock()

			if current && u.fn != nil {
				m.deliver(u)
			}
		}
	}
}

func (m *Manager) deliver(u update) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("update callback panic",
				zap.Uint64("session", u.session),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	u.fn(u.snap)
}
