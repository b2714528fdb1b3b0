package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades to CSV or Org-mode",
	Long: `Write the selected trades to stdout or a file.

Examples:
  tradejournal export csv -o trades.csv
  tradejournal export org --status closed --day 2024-04-10`,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export trades as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, journal.WriteCSV)
	},
}

var exportOrgCmd = &cobra.Command{
	Use:   "org",
	Short: "Export trades as Org-mode entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(w io.Writer, trades []journal.Trade) error {
			_, err := io.WriteString(w, journal.FormatTradesOrg(trades))
			return err
		})
	},
}

var (
	exportFilter filterFlags
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportCSVCmd, exportOrgCmd)

	for _, c := range []*cobra.Command{exportCSVCmd, exportOrgCmd} {
		exportFilter.register(c, "all")
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	}
}

func runExport(cmd *cobra.Command, write func(io.Writer, []journal.Trade) error) error {
	f, err := exportFilter.filter(time.Local)
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

	if exportOutput == "" {
		return write(cmd.OutOrStdout(), trades)
	}

	file, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := write(file, trades); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", exportOutput, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d trades to %s\n", len(trades), exportOutput)
	return nil
}
