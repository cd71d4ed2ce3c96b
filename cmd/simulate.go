package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var simFlags struct {
	year, month, day, agents int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one day with a number of agents and print the mishandled incidents",
	Args:  cobra.NoArgs,
	RunE:  simulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simFlags.year, "year", 0, "year")
	f.IntVar(&simFlags.month, "month", 0, "month (1-12)")
	f.IntVar(&simFlags.day, "day", 0, "day of month")
	f.IntVarP(&simFlags.agents, "agents", "n", 0, "number of agents")
	for _, name := range []string{"year", "month", "day", "agents"} {
		_ = simulateCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	g, err := e.model.BuildGraph(ctx, simFlags.year)
	if err != nil {
		return err
	}
	res, err := e.model.RunSimulation(ctx, g, simFlags.year, simFlags.month, simFlags.day, simFlags.agents)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "mishandled: %d\n", res.Mishandled)
	_, _ = fmt.Fprintf(out, "incidents: %d (no agent: %d, late: %d)\n", res.Incidents, res.NoAgent, res.Late)
	return nil
}
