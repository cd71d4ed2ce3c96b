package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	dbPath      string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "patrolsim",
	Short:         "Crime patrol dispatch simulator",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite incident database, overrides storage.path")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while the command runs")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
