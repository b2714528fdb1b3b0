package market

import (
	"sync"
	"sync/atomic"
)

// Board holds the most recently published Snapshot for consumers that prefer
// to pull. Publish can be passed directly as a subscription callback.
//
// Publish swaps the stored Snapshot; it never mutates one in place, so a copy
// obtained from Snapshot stays valid after later publishes.
type Board struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	once    sync.Once
	updated chan struct{}
}

func NewBoard() *Board {
	b := &Board{}
	b.init()
	return b
}

func (b *Board) init() {
	b.once.Do(func() {
		b.updated = make(chan struct{}, 1)
		var empty Snapshot
		b.current.Store(&empty)
	})
}

// Publish stores snap as the current Snapshot and signals Updated.
func (b *Board) Publish(snap Snapshot) {
	b.init()
	b.current.Store(&snap)
	b.version.Add(1)

	select {
	case b.updated <- struct{}{}:
	default:
	}
}

func (b *Board) Snapshot() Snapshot {
	b.init()
	return *b.current.Load()
}

// Version counts the publishes seen so far.
func (b *Board) Version() uint64 {
	return b.version.Load()
}

// Updated is signalled after each Publish. Signals coalesce while nobody is
// receiving; readers re-read Snapshot when woken.
func (b *Board) Updated() <-chan struct{} {
	b.init()
	return b.updated
}
