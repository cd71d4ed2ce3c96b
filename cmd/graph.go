package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var graphYear int

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the district graph of a year and print its neighbours",
	Args:  cobra.NoArgs,
	RunE:  buildGraph,
}

func init() {
	graphCmd.Flags().IntVar(&graphYear, "year", 0, "year of the graph")
	_ = graphCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(graphCmd)
}

func buildGraph(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	g, err := e.model.BuildGraph(ctx, graphYear)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "year %d: %d districts, %d edges\n", g.Year(), g.VertexCount(), g.EdgeCount())
	if ex := g.Excluded(); len(ex) > 0 {
		_, _ = fmt.Fprintf(out, "excluded (no incidents): %v\n", ex)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "district\tneighbour\tkm")
	for _, d := range g.Vertices() {
		adj, err := g.Neighbors(d)
		if err != nil {
			return err
		}
		for _, a := range adj {
			_, _ = fmt.Fprintf(tw, "%d\t%d\t%.3f\n", a.From, a.To, a.Distance)
		}
	}
	return tw.Flush()
}
