package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 or a local "YYYY-MM-DD[ HH:MM[:SS]]".
func parseTime(loc *time.Location, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want RFC3339 or YYYY-MM-DD[ HH:MM])", s)
}

func parsePrice(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, s)
	}
	return d, nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

// filterFlags are the trade selection flags shared by list, watch and export.
type filterFlags struct {
	symbol    string
	direction string
	status    string
	tag       string
	from      string
	to        string
	day       string
}

func (f *filterFlags) register(cmd *cobra.Command, defaultStatus string) {
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "only trades in this symbol")
	cmd.Flags().StringVar(&f.direction, "direction", "", "long|short")
	cmd.Flags().StringVar(&f.status, "status", defaultStatus, "open|closed|all")
	cmd.Flags().StringVar(&f.tag, "tag", "", "only trades carrying this tag")
	cmd.Flags().StringVar(&f.from, "from", "", "opened at or after this time")
	cmd.Flags().StringVar(&f.to, "to", "", "opened before this time")
	cmd.Flags().StringVar(&f.day, "day", "", "opened on this local day (YYYY-MM-DD)")
}

func (f *filterFlags) filter(loc *time.Location) (journal.Filter, error) {
	out := journal.Filter{Symbol: f.symbol, Tag: f.tag}

	if f.direction != "" {
		d, err := journal.ParseDirection(f.direction)
		if err != nil {
			return journal.Filter{}, err
		}
		out.Direction = d
	}

	st, err := journal.ParseStatus(f.status)
	if err != nil {
		return journal.Filter{}, err
	}
	out.Status = st

	if f.day != "" {
		if f.from != "" || f.to != "" {
			return journal.Filter{}, fmt.Errorf("--day cannot be combined with --from/--to")
		}
		if out.From, out.To, err = dayBounds(loc, f.day); err != nil {
			return journal.Filter{}, fmt.Errorf("--day: %w", err)
		}
		return out, nil
	}
	if f.from != "" {
		if out.From, err = parseTime(loc, f.from); err != nil {
			return journal.Filter{}, fmt.Errorf("--from: %w", err)
		}
	}
	if f.to != "" {
		if out.To, err = parseTime(loc, f.to); err != nil {
			return journal.Filter{}, fmt.Errorf("--to: %w", err)
		}
	}
	return out, nil
}
