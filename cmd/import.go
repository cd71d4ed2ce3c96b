package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/patrolsim/infra/importer"
	"github.com/kilianp07/patrolsim/infra/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Load a crime CSV export into the incident database",
	Args:  cobra.ExactArgs(1),
	RunE:  importCSV,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importCSV(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	im := importer.New(e.store, e.cfg.Storage.BatchSize, logger.New("importer"))
	stats, err := im.Import(ctx, f)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d incidents, skipped %d rows\n", stats.Imported, stats.Skipped)
	return nil
}
