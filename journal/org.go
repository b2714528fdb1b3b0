package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; notes become the body.
func FormatTradeOrg(t Trade) string {
	status := "OPEN"
	if !t.IsOpen() {
		status = "CLOSED"
	}
	heading := fmt.Sprintf("** %s %s %s (%s)", status, t.Symbol, strings.ToUpper(string(t.Direction)), shortID(t.ID))
	if len(t.Tags) > 0 {
		heading += " :" + strings.Join(t.Tags, ":") + ":"
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":QUANTITY: %s\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":OPEN_PRICE: %s\n", t.OpenPrice))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", t.OpenTime.UTC().Format(time.RFC3339)))
	if t.StopLoss.Valid {
		b.WriteString(fmt.Sprintf(":STOP_LOSS: %s\n", t.StopLoss.Decimal))
	}
	if !t.IsOpen() {
		b.WriteString(fmt.Sprintf(":CLOSE_PRICE: %s\n", t.ClosePrice.Decimal))
		b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339)))
		b.WriteString(fmt.Sprintf(":REALIZED_PL: %s\n", PnL(t, t.ClosePrice.Decimal).StringFixed(2)))
		if r, ok := RMultiple(t, t.ClosePrice.Decimal); ok {
			b.WriteString(fmt.Sprintf(":R_MULTIPLE: %s\n", r.StringFixed(2)))
		}
	}
	b.WriteString(":END:\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
