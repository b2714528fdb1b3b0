package cmd

import (
	"fmt"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A local trade journal with live market quotes",
	Long: `Tradejournal records your positions in a local SQLite file and values
them against live market data.

It provides tools for:
  - Recording, closing and editing trades
  - Listing trades by symbol, direction, status, tag and date
  - Watching open positions with live P/L from the Binance feed
  - Exporting the journal to CSV or Org-mode

Settings come from an optional config file, a .env file and TRADEJOURNAL_*
environment variables, in that order; flags win over all of them.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile      string
	dbPathFlag   string
	logLevelFlag string

	cfg *config.Config
	log = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() { _ = log.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPathFlag, "db", "d", "", "path to SQLite journal DB (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug|info|warn|error (overrides config)")
}

// setup resolves the configuration and logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		c.Journal.DBPath = dbPathFlag
	}
	if cmd.Flags().Changed("log-level") {
		c.Log.Level = logLevelFlag
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	cfg, log = c, l
	return nil
}

func openStore() (journal.Store, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	log.Debug("journal opened", zap.String("path", cfg.Journal.DBPath))
	return j, nil
}
