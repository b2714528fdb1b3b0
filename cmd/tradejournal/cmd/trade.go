package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record and manage trades",
	Long: `Record, close, edit and query trades in the journal.

Examples:
  tradejournal trade add --symbol BTCUSDT --direction long --open-price 63500 --quantity 0.1 --stop 62000
  tradejournal trade close <trade-id> --price 64800
  tradejournal trade list --status open --tag breakout
  tradejournal trade show <trade-id>`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeAdd,
}

var tradeCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeClose,
}

var tradeEditCmd = &cobra.Command{
	Use:   "edit <trade-id>",
	Short: "Change fields of a trade",
	Long: `Change fields of a trade. Only the flags given are applied; --tag
replaces the whole tag list.`,
	Args: cobra.ExactArgs(1),
	RunE: runTradeEdit,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Print a trade as an Org-mode entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeRmCmd = &cobra.Command{
	Use:     "rm <trade-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a trade",
	Args:    cobra.ExactArgs(1),
	RunE:    runTradeRm,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

// tradeFlags are the fields shared by add and edit.
type tradeFlags struct {
	symbol     string
	direction  string
	openPrice  string
	quantity   string
	stop       string
	openTime   string
	notes      string
	tags       []string
	clearStop  bool
	closePrice string
	closeTime  string
}

var (
	addFlags  tradeFlags
	editFlags tradeFlags

	closePrice string
	closeTime  string

	listFilter filterFlags
)

func (f *tradeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.symbol, "symbol", "", "market symbol, e.g. BTCUSDT")
	cmd.Flags().StringVar(&f.direction, "direction", "", "long|short")
	cmd.Flags().StringVar(&f.openPrice, "open-price", "", "entry price")
	cmd.Flags().StringVar(&f.quantity, "quantity", "", "position size")
	cmd.Flags().StringVar(&f.stop, "stop", "", "stop loss price")
	cmd.Flags().StringVar(&f.openTime, "open-time", "", "entry time (default now)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag (repeatable or comma separated)")
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd, tradeCloseCmd, tradeEditCmd, tradeShowCmd, tradeRmCmd, tradeListCmd)

	addFlags.register(tradeAddCmd)
	tradeAddCmd.MarkFlagRequired("symbol")
	tradeAddCmd.MarkFlagRequired("direction")
	tradeAddCmd.MarkFlagRequired("open-price")
	tradeAddCmd.MarkFlagRequired("quantity")

	editFlags.register(tradeEditCmd)
	tradeEditCmd.Flags().BoolVar(&editFlags.clearStop, "clear-stop", false, "remove the stop loss")
	tradeEditCmd.Flags().StringVar(&editFlags.closePrice, "close-price", "", "exit price of a closed trade")
	tradeEditCmd.Flags().StringVar(&editFlags.closeTime, "close-time", "", "exit time of a closed trade")

	tradeCloseCmd.Flags().StringVar(&closePrice, "price", "", "exit price (required)")
	tradeCloseCmd.Flags().StringVar(&closeTime, "time", "", "exit time (default now)")
	tradeCloseCmd.MarkFlagRequired("price")

	listFilter.register(tradeListCmd, "all")
}

// apply copies the flags that were set on cmd into t.
func (f *tradeFlags) apply(cmd *cobra.Command, t *journal.Trade) error {
	set := cmd.Flags().Changed
	var err error

	if set("symbol") {
		t.Symbol = f.symbol
	}
	if set("direction") {
		if t.Direction, err = journal.ParseDirection(f.direction); err != nil {
			return err
		}
	}
	if set("open-price") {
		if t.OpenPrice, err = parsePrice("open-price", f.openPrice); err != nil {
			return err
		}
	}
	if set("quantity") {
		if t.Quantity, err = parsePrice("quantity", f.quantity); err != nil {
			return err
		}
	}
	if set("stop") {
		stop, err := parsePrice("stop", f.stop)
		if err != nil {
			return err
		}
		t.StopLoss = decimal.NewNullDecimal(stop)
	}
	if f.clearStop {
		t.StopLoss = decimal.NullDecimal{}
	}
	if set("open-time") {
		if t.OpenTime, err = parseTime(time.Local, f.openTime); err != nil {
			return fmt.Errorf("--open-time: %w", err)
		}
	}
	if set("notes") {
		t.Notes = f.notes
	}
	if set("tag") {
		t.Tags = f.tags
	}
	if set("close-price") {
		price, err := parsePrice("close-price", f.closePrice)
		if err != nil {
			return err
		}
		t.ClosePrice = decimal.NewNullDecimal(price)
	}
	if set("close-time") {
		if t.CloseTime, err = parseTime(time.Local, f.closeTime); err != nil {
			return fmt.Errorf("--close-time: %w", err)
		}
	}
	return nil
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	t := journal.Trade{OpenTime: time.Now()}
	if err := addFlags.apply(cmd, &t); err != nil {
		return err
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	added, err := j.Add(cmd.Context(), t)
	if err != nil {
		return fmt.Errorf("add trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s %s %s @ %s\n",
		added.ID, added.Symbol, added.Direction, added.OpenPrice)
	return nil
}

func runTradeClose(cmd *cobra.Command, args []string) error {
	price, err := parsePrice("price", closePrice)
	if err != nil {
		return err
	}
	at := time.Now()
	if closeTime != "" {
		if at, err = parseTime(time.Local, closeTime); err != nil {
			return fmt.Errorf("--time: %w", err)
		}
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	if err := t.Close(price, at); err != nil {
		return err
	}
	if err := j.Update(cmd.Context(), t); err != nil {
		return fmt.Errorf("update trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Closed %s %s @ %s (P/L %s)\n",
		t.ID, t.Symbol, price, journal.PnL(t, price).StringFixed(2))
	return nil
}

func runTradeEdit(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	if err := editFlags.apply(cmd, &t); err != nil {
		return err
	}
	if err := j.Update(cmd.Context(), t); err != nil {
		return fmt.Errorf("update trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s\n", t.ID)
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradeRm(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	f, err := listFilter.filter(time.Local)
	if err != nil {
		return err
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.List(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	return writeTrades(cmd.OutOrStdout(), trades)
}
