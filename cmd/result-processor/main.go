package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/mca-result-processor/internal/utils"
)

// app carries the state shared by every subcommand
type app struct {
	configFile string
	envFile    string
	logLevel   string
	logger     *logrus.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "result-processor",
		Short: "Compute grades, SGPA, pass/fail and ranks for an MCA semester",
		Long: `MCA Result Processor

Reads a marks sheet (CSV or XLSX), converts marks to grades and grade points,
computes credit-weighted SGPA, pass/fail and dense class ranks, and reports
leaderboards and per-subject fail counts. Results can be exported, stored in
MySQL or served over a read-only JSON API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			a.logger = utils.SetupLogging(a.logLevel)

			// Load environment variables
			utils.LoadEnvironmentVariables(a.envFile, a.logger)
			utils.LogMySQLEnvironment(a.logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVarP(&a.envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		a.processCmd(),
		a.studentCmd(),
		a.leaderboardCmd(),
		a.analyticsCmd(),
		a.subjectsCmd(),
		a.generateCmd(),
		a.storeCmd(),
		a.loadCmd(),
		a.serveCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
