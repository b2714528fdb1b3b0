package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/market"
)

type Status string

const (
	StatusAll    Status = ""
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("unknown status %q (want open|closed|all)", s)
	}
}

// Filter selects trades. Zero fields match everything. From/To bound the
// open time as [From, To).
type Filter struct {
	Symbol    string
	Direction Direction
	Status    Status
	Tag       string
	From      time.Time
	To        time.Time
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Trade) bool {
	if sym := market.NormalizeSymbol(f.Symbol); sym != "" && market.NormalizeSymbol(t.Symbol) != sym {
		return false
	}
	if f.Direction != "" && t.Direction != f.Direction {
		return false
	}
	switch f.Status {
	case StatusOpen:
		if !t.IsOpen() {
			return false
		}
	case StatusClosed:
		if t.IsOpen() {
			return false
		}
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		found := false
		for _, have := range t.Tags {
			if have == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && t.OpenTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.OpenTime.Before(f.To) {
		return false
	}
	return true
}

// Apply returns the trades that match f, preserving order.
func (f Filter) Apply(trades []Trade) []Trade {
	var out []Trade
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// where renders f as a SQL WHERE clause for the trades table.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if sym := market.NormalizeSymbol(f.Symbol); sym != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, string(sym))
	}
	if f.Direction != "" {
		conds = append(conds, "direction = ?")
		args = append(args, string(f.Direction))
	}
	switch f.Status {
	case StatusOpen:
		conds = append(conds, "close_time IS NULL")
	case StatusClosed:
		conds = append(conds, "close_time IS NOT NULL")
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		conds = append(conds, "instr(tags, ?) > 0")
		args = append(args, ","+tag+",")
	}
	if !f.From.IsZero() {
		conds = append(conds, "open_time >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "open_time < ?")
		args = append(args, f.To.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
