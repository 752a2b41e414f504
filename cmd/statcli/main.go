package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statcore/app"
	"statcore/internal/config"
	"statcore/internal/container"
	"statcore/internal/format"
)

// env is built once per invocation by the root command's PersistentPreRunE
type env struct {
	service   *app.AnalysisService
	precision format.Precision
	alpha     float64
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "statcli",
		Short:         "Descriptive statistics, t-tests, correlation and p-value correction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c, err := container.New(cfg,
				container.WithLogLevel(logLevel),
				container.WithLogOutput(cmd.ErrOrStderr()),
			)
			if err != nil {
				return err
			}
			e.service = c.Analysis
			e.precision = c.Precision
			return nil
		},
	}

	rootCmd.PersistentFlags().Float64Var(&e.alpha, "alpha", 0, "Significance level (default from STATCORE_ALPHA, 0.05)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (default from LOG_LEVEL)")

	rootCmd.AddCommand(
		newDescribeCmd(e),
		newTTestCmd(e),
		newPearsonCmd(e),
		newCorrectCmd(e),
	)
	return rootCmd
}
