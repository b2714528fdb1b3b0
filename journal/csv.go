package journal

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"trade_id", "symbol", "direction", "quantity", "open_price", "open_time",
	"close_price", "close_time", "stop_loss", "notes", "tags",
}

// WriteCSV writes trades with a header row. Empty cells mean "not set".
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		closeTime := ""
		if !t.CloseTime.IsZero() {
			closeTime = t.CloseTime.UTC().Format(time.RFC3339)
		}
		err := cw.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Direction),
			t.Quantity.String(),
			t.OpenPrice.String(),
			t.OpenTime.UTC().Format(time.RFC3339),
			f(t.ClosePrice),
			closeTime,
			f(t.StopLoss),
			t.Notes,
			strings.Join(t.Tags, ";"),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
