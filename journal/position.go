package journal

import (
	"github.com/rustyeddy/tradejournal/market"
	"github.com/shopspring/decimal"
)

// Position is a trade valued against the latest quote for its symbol.
type Position struct {
	Trade

	Quote    market.Quote
	HasQuote bool

	// Mark is the price P/L is computed at: the close price for closed
	// trades, the quote's last price for open ones.
	Mark decimal.NullDecimal
	PnL  decimal.NullDecimal
	// PnLPercent is the move relative to the open price, signed by direction.
	PnLPercent decimal.NullDecimal
	R          decimal.NullDecimal
}

// PnL is the profit or loss of t if it were exited at price.
func PnL(t Trade, price decimal.Decimal) decimal.Decimal {
	return price.Sub(t.OpenPrice).Mul(t.Quantity).Mul(t.Direction.sign())
}

// RiskAmount is the loss taken if the stop is hit.
func RiskAmount(t Trade) (decimal.Decimal, bool) {
	if !t.StopLoss.Valid {
		return decimal.Zero, false
	}
	return t.OpenPrice.Sub(t.StopLoss.Decimal).Abs().Mul(t.Quantity), true
}

// RMultiple expresses the P/L at price in units of the planned risk.
func RMultiple(t Trade, price decimal.Decimal) (decimal.Decimal, bool) {
	risk, ok := RiskAmount(t)
	if !ok || risk.IsZero() {
		return decimal.Zero, false
	}
	return PnL(t, price).Div(risk), true
}

// Enrich values trades against snap. Closed trades use their close price and
// still carry a quote when one is available.
func Enrich(trades []Trade, snap market.Snapshot) []Position {
	out := make([]Position, 0, len(trades))
	for _, t := range trades {
		p := Position{Trade: t}
		if q, ok := snap.Get(market.NormalizeSymbol(t.Symbol)); ok {
			p.Quote, p.HasQuote = q, true
		}

		switch {
		case !t.IsOpen():
			p.Mark = t.ClosePrice
		case p.HasQuote:
			if last, err := decimal.NewFromString(p.Quote.Last); err == nil {
				p.Mark = decimal.NewNullDecimal(last)
			}
		}

		if p.Mark.Valid {
			price := p.Mark.Decimal
			p.PnL = decimal.NewNullDecimal(PnL(t, price))
			pct := price.Sub(t.OpenPrice).Div(t.OpenPrice).Mul(decimal.NewFromInt(100)).Mul(t.Direction.sign())
			p.PnLPercent = decimal.NewNullDecimal(pct.Round(2))
			if r, ok := RMultiple(t, price); ok {
				p.R = decimal.NewNullDecimal(r.Round(2))
			}
		}
		out = append(out, p)
	}
	return out
}
