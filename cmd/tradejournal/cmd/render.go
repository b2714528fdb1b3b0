package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/shopspring/decimal"
)

const listTime = "2006-01-02 15:04"

func writeTrades(w io.Writer, trades []journal.Trade) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tDIR\tQTY\tOPEN\tOPENED\tCLOSE\tCLOSED\tSTOP\tTAGS")
	for _, t := range trades {
		closed := "-"
		if !t.IsOpen() {
			closed = t.CloseTime.Local().Format(listTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Symbol, t.Direction, t.Quantity, t.OpenPrice,
			t.OpenTime.Local().Format(listTime),
			orDash(t.ClosePrice), closed, orDash(t.StopLoss),
			strings.Join(t.Tags, ","),
		)
	}
	return tw.Flush()
}

// writePositions renders the watch table.
func writePositions(w io.Writer, asOf time.Time, positions []journal.Position) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "as of %s\n", asOf.Local().Format(time.TimeOnly))
	fmt.Fprintln(tw, "SYMBOL\tDIR\tQTY\tOPEN\tLAST\t24H%\tHIGH\tLOW\tP/L\tP/L%\tR\tSTATUS\t")

	total := decimal.Zero
	for _, p := range positions {
		last, pct, high, low := "-", "-", "-", "-"
		if p.HasQuote {
			last, pct, high, low = p.Quote.Last, p.Quote.ChangePercent, p.Quote.High, p.Quote.Low
		}
		status := "open"
		if !p.IsOpen() {
			status = "closed"
		}
		if p.PnL.Valid {
			total = total.Add(p.PnL.Decimal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Symbol, p.Direction, p.Quantity, p.OpenPrice,
			last, pct, high, low,
			fixed(p.PnL), fixed(p.PnLPercent), fixed(p.R), status,
		)
	}
	fmt.Fprintf(tw, "\t\t\t\t\t\t\t\t%s\t\t\t\t\n", total.StringFixed(2))
	return tw.Flush()
}

func orDash(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}

func fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}
