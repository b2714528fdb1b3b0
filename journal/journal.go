// journal/journal.go
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("journal: trade not found")

type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want long|short)", s)
	}
}

// sign is +1 for long and -1 for short positions.
func (d Direction) sign() decimal.Decimal {
	if d == Short {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Trade is one recorded position. A trade is open until CloseTime is set.
type Trade struct {
	ID         string
	Symbol     string
	Direction  Direction
	Quantity   decimal.Decimal
	OpenPrice  decimal.Decimal
	OpenTime   time.Time
	ClosePrice decimal.NullDecimal
	CloseTime  time.Time
	StopLoss   decimal.NullDecimal
	Notes      string
	Tags       []string
}

func (t Trade) IsOpen() bool {
	return t.CloseTime.IsZero()
}

// Close marks the trade closed at price and time at.
func (t *Trade) Close(price decimal.Decimal, at time.Time) error {
	if !t.IsOpen() {
		return fmt.Errorf("trade %s already closed", t.ID)
	}
	t.ClosePrice = decimal.NewNullDecimal(price)
	t.CloseTime = at
	return t.Validate()
}

// Validate checks the trade can be stored.
func (t Trade) Validate() error {
	if market.NormalizeSymbol(t.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if t.Direction != Long && t.Direction != Short {
		return fmt.Errorf("direction must be long or short")
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive")
	}
	if !t.OpenPrice.IsPositive() {
		return fmt.Errorf("open price must be positive")
	}
	if t.OpenTime.IsZero() {
		return fmt.Errorf("open time is required")
	}
	if t.ClosePrice.Valid != !t.CloseTime.IsZero() {
		return fmt.Errorf("close price and close time must be set together")
	}
	if t.ClosePrice.Valid && !t.ClosePrice.Decimal.IsPositive() {
		return fmt.Errorf("close price must be positive")
	}
	if !t.CloseTime.IsZero() && t.CloseTime.Before(t.OpenTime) {
		return fmt.Errorf("close time is before open time")
	}
	if t.StopLoss.Valid && !t.StopLoss.Decimal.IsPositive() {
		return fmt.Errorf("stop loss must be positive")
	}
	return nil
}

// normalize canonicalizes the symbol and tags before storage.
func (t *Trade) normalize() {
	t.Symbol = string(market.NormalizeSymbol(t.Symbol))
	t.Tags = NormalizeTags(t.Tags)
	t.OpenTime = t.OpenTime.UTC()
	if !t.CloseTime.IsZero() {
		t.CloseTime = t.CloseTime.UTC()
	}
}

// NormalizeTags lowercases, trims, dedups and sorts tags. Commas are not
// allowed inside a tag and split it.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Store persists trades.
type Store interface {
	Add(ctx context.Context, t Trade) (Trade, error)
	Get(ctx context.Context, id string) (Trade, error)
	Update(ctx context.Context, t Trade) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Trade, error)
	Close() error
}

// Symbols returns the distinct symbols of trades, uppercased, in first-seen order.
func Symbols(trades []Trade) []market.Symbol {
	return market.SymbolsOf(trades, func(t Trade) string { return t.Symbol })
}

// OpenSymbols is Symbols restricted to open trades.
func OpenSymbols(trades []Trade) []market.Symbol {
	var open []Trade
	for _, t := range trades {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	return Symbols(open)
}
