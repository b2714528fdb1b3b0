package market

import (
	"encoding/json"
	"sort"
	"time"
)

// Quote is the latest known price data for one symbol. Prices are kept as the
// feed's decimal text so no precision is lost on the way to the display.
type Quote struct {
	Symbol        Symbol    `json:"symbol"`
	Last          string    `json:"last"`
	High          string    `json:"high"`
	Low           string    `json:"low"`
	ChangePercent string    `json:"daily_change_percentage"`
	Time          time.Time `json:"timestamp"`
	Source        string    `json:"source"`
}

// Snapshot maps each symbol to its most recent Quote. A Snapshot is
// immutable: With returns a modified copy and readers only get copies out, so
// a Snapshot handed to several holders stays the same for all of them. The
// zero value is an empty Snapshot.
type Snapshot struct {
	quotes map[Symbol]Quote
}

// EmptySnapshot returns an empty Snapshot.
func EmptySnapshot() Snapshot {
	return Snapshot{}
}

// With returns a copy of s in which q replaces any previous quote for q.Symbol.
//
// Fields the feed left empty fall back to the previous known last price for
// the symbol (high/low) or to "0" (change percent). No other field is carried
// over from the previous quote.
func (s Snapshot) With(q Quote) Snapshot {
	prev, had := s.quotes[q.Symbol]
	fallback := q.Last
	if had && prev.Last != "" {
		fallback = prev.Last
	}
	if q.High == "" {
		q.High = fallback
	}
	if q.Low == "" {
		q.Low = fallback
	}
	if q.ChangePercent == "" {
		q.ChangePercent = "0"
	}

	out := make(map[Symbol]Quote, len(s.quotes)+1)
	for k, v := range s.quotes {
		out[k] = v
	}
	out[q.Symbol] = q
	return Snapshot{quotes: out}
}

func (s Snapshot) Get(sym Symbol) (Quote, bool) {
	q, ok := s.quotes[sym]
	return q, ok
}

func (s Snapshot) Len() int { return len(s.quotes) }

// Symbols returns the snapshot keys in lexical order.
func (s Snapshot) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.quotes))
	for k := range s.quotes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Quotes returns a copy of the symbol to quote mapping.
func (s Snapshot) Quotes() map[Symbol]Quote {
	out := make(map[Symbol]Quote, len(s.quotes))
	for k, v := range s.quotes {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the snapshot as an object keyed by symbol.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Quotes())
}
