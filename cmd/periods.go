package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the years, months and days present in the database",
	Args:  cobra.NoArgs,
	RunE:  listPeriods,
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, " ")
}

func listPeriods(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	years, err := e.model.Years(ctx)
	if err != nil {
		return err
	}
	months, err := e.model.Months(ctx)
	if err != nil {
		return err
	}
	days, err := e.model.Days(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "years:  %s\n", joinInts(years))
	_, _ = fmt.Fprintf(out, "months: %s\n", joinInts(months))
	_, _ = fmt.Fprintf(out, "days:   %s\n", joinInts(days))
	return nil
}
