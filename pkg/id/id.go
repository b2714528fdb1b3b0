// Package id issues trade identifiers. IDs are ULIDs: 26 characters,
// lexicographically ordered by creation time, so SQLite can sort by them.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out monotonically increasing ULIDs. Two IDs issued in the
// same millisecond still sort in issue order.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator returns a Generator reading the clock from now. A nil now
// uses time.Now.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Next returns a new ID.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	return id.String(), nil
}

var std = NewGenerator(nil, nil)

// New returns an ID from the package generator. It panics if the entropy
// source fails.
func New() string {
	s, err := std.Next()
	if err != nil {
		panic(err)
	}
	return s
}

// Time reports when id was issued.
func Time(id string) (time.Time, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("id: parse %q: %w", id, err)
	}
	return ulid.Time(u.Time()).UTC(), nil
}
