package market

import "strings"

// Symbol is the canonical uppercase identifier of a tradable pair, e.g. BTCUSDT.
type Symbol string

// NormalizeSymbol trims and uppercases s.
func NormalizeSymbol(s string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Symbol) String() string { return string(s) }

// SymbolSet is an insertion-ordered set of normalized symbols.
type SymbolSet struct {
	order []Symbol
	seen  map[Symbol]struct{}
}

func NewSymbolSet(raw ...string) *SymbolSet {
	s := &SymbolSet{seen: make(map[Symbol]struct{})}
	for _, r := range raw {
		s.Insert(r)
	}
	return s
}

// Insert adds the normalized form of raw. Blank symbols are ignored.
// It reports whether the set grew.
func (s *SymbolSet) Insert(raw string) bool {
	sym := NormalizeSymbol(raw)
	if sym == "" {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[Symbol]struct{})
	}
	if _, ok := s.seen[sym]; ok {
		return false
	}
	s.seen[sym] = struct{}{}
	s.order = append(s.order, sym)
	return true
}

func (s *SymbolSet) Include(sym Symbol) bool {
	_, ok := s.seen[sym]
	return ok
}

func (s *SymbolSet) Len() int { return len(s.order) }

// Slice returns the symbols in first-seen order.
func (s *SymbolSet) Slice() []Symbol {
	out := make([]Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// SymbolsOf derives the deduplicated, uppercase symbols of items in first-seen
// order. It has no side effects; an empty input yields an empty (non-nil) slice.
func SymbolsOf[T any](items []T, symbol func(T) string) []Symbol {
	set := NewSymbolSet()
	for _, it := range items {
		set.Insert(symbol(it))
	}
	return set.Slice()
}

// Normalize canonicalizes an already-typed symbol list the same way SymbolsOf does.
func Normalize(symbols []Symbol) []Symbol {
	set := NewSymbolSet()
	for _, s := range symbols {
		set.Insert(string(s))
	}
	return set.Slice()
}

// EqualSymbols reports whether a and b hold the same symbols regardless of order.
func EqualSymbols(a, b []Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[Symbol]int, len(a))
	for _, s := range a {
		set[s]++
	}
	for _, s := range b {
		if set[s] == 0 {
			return false
		}
		set[s]--
	}
	return true
}
