// Package feed keeps a single live market-data connection in step with the
// set of symbols a caller is interested in, and folds the decoded ticks into
// market.Snapshots delivered to the caller.
package feed

import (
	"context"

	"github.com/rustyeddy/tradejournal/market"
)

// Transport opens one connection carrying quotes for every symbol given.
// A new symbol set always means a new Open call; there is no incremental
// add/remove on an open Stream.
type Transport interface {
	Open(ctx context.Context, symbols []market.Symbol) (Stream, error)
}

// Stream yields raw feed messages in arrival order. Next returns an error
// once the connection is gone; Close must be safe to call more than once and
// must unblock a pending Next.
type Stream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Decoder turns one raw message into a Quote. It returns false for anything
// it does not recognise. All knowledge of a feed's wire format lives here.
type Decoder interface {
	Decode(raw []byte) (market.Quote, bool)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw []byte) (market.Quote, bool)

func (f DecoderFunc) Decode(raw []byte) (market.Quote, bool) { return f(raw) }
