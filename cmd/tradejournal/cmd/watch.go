package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/feed"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch trades with live quotes",
	Long: `Subscribe to live quotes for the symbols of the selected trades and
print their P/L on every update until interrupted.

The trade list is re-read every --reload interval; when the set of symbols
changes the subscription is replaced.

Examples:
  tradejournal watch
  tradejournal watch --status all --feed rest`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchFilter filterFlags
	watchFeed   string
	watchReload time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFilter.register(watchCmd, "open")
	watchCmd.Flags().StringVar(&watchFeed, "feed", "", "ws|rest (overrides config)")
	watchCmd.Flags().DurationVar(&watchReload, "reload", 30*time.Second, "how often to re-read the journal (0 disables)")
}

// newFeed builds the transport and matching decoder for fc.
func newFeed(fc config.FeedConfig) (feed.Transport, feed.Decoder, error) {
	switch fc.Transport {
	case config.TransportWebsocket:
		return &feed.WebsocketTransport{URL: fc.URL, StreamSuffix: fc.StreamSuffix}, feed.BinanceTicker{}, nil
	case config.TransportREST:
		interval, err := fc.ParseInterval()
		if err != nil {
			return nil, nil, fmt.Errorf("poll interval: %w", err)
		}
		return &feed.RESTTransport{BaseURL: fc.RESTURL, Interval: interval}, feed.BinanceRESTTicker{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed %q (want ws|rest)", fc.Transport)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	f, err := watchFilter.filter(time.Local)
	if err != nil {
		return err
	}
	fc := cfg.Feed
	if watchFeed != "" {
		fc.Transport = watchFeed
	}
	transport, decoder, err := newFeed(fc)
	if err != nil {
		return err
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := feed.NewManager(transport, decoder, log.Named("feed"))
	defer m.Close()

	w := &watcher{store: j, filter: f, manager: m, out: cmd.OutOrStdout()}
	if err := w.start(ctx); err != nil {
		return err
	}
	defer w.stop()

	var reload <-chan time.Time
	if watchReload > 0 {
		ticker := time.NewTicker(watchReload)
		defer ticker.Stop()
		reload = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w.out)
			return nil

		case <-w.board.Updated():
			if err := w.render(); err != nil {
				return err
			}

		case <-reload:
			changed, err := w.reload(ctx)
			if err != nil {
				log.Warn("reload trades", zap.Error(err))
				continue
			}
			if changed || w.board.Version() > 0 {
				if err := w.render(); err != nil {
					return err
				}
			}
		}
	}
}

// watcher keeps one subscription in step with the trades matching filter.
// Each subscription publishes to its own Board, so quotes from a replaced
// subscription are never shown next to the new symbol set.
type watcher struct {
	store   journal.Store
	filter  journal.Filter
	manager *feed.Manager
	out     io.Writer

	trades      []journal.Trade
	symbols     []market.Symbol
	board       *market.Board
	unsubscribe func()
}

func (w *watcher) start(ctx context.Context) error {
	trades, err := w.list(ctx)
	if err != nil {
		return err
	}
	w.trades = trades
	w.subscribe(journal.Symbols(trades))
	if len(w.symbols) == 0 {
		fmt.Fprintln(w.out, "no trades match; waiting for the journal to change")
	}
	return nil
}

// reload re-reads the journal and resubscribes when its symbol set changed.
func (w *watcher) reload(ctx context.Context) (bool, error) {
	trades, err := w.list(ctx)
	if err != nil {
		return false, err
	}
	w.trades = trades
	syms := journal.Symbols(trades)
	if market.EqualSymbols(syms, w.symbols) {
		return false, nil
	}
	log.Info("journal symbols changed", zap.Stringers("symbols", syms))
	w.unsubscribe()
	w.subscribe(syms)
	return true, nil
}

func (w *watcher) subscribe(symbols []market.Symbol) {
	w.symbols = symbols
	w.board = market.NewBoard()
	w.unsubscribe = w.manager.Subscribe(symbols, w.board.Publish)
}

func (w *watcher) stop() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

func (w *watcher) render() error {
	return writePositions(w.out, time.Now(), journal.Enrich(w.trades, w.board.Snapshot()))
}

func (w *watcher) list(ctx context.Context) ([]journal.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	trades, err := w.store.List(ctx, w.filter)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}
