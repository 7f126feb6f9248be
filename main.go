package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bcdannyboy/crr/config"
)

// Set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "crr",
	Short:         "Price European, American and barrier options on a CRR binomial lattice",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		if err := loader.BindFlags(cmd.Flags(), flagKeys); err != nil {
			return err
		}

		configFile, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")

		var err error
		if cfg, err = loader.Load(envFile, configFile); err != nil {
			return err
		}
		if logger, err = config.NewLogger(cfg.Logging, os.Stderr); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"up":           "lattice.up_factor",
	"vol":          "lattice.volatility",
	"rate":         "lattice.rate",
	"maturity":     "lattice.maturity",
	"steps":        "lattice.steps",
	"style":        "contract.style",
	"spot":         "contract.spot",
	"strike":       "contract.strike",
	"barrier":      "contract.barrier",
	"option-type":  "contract.option_type",
	"barrier-type": "contract.barrier_type",
	"paths":        "simulation.paths",
	"seed":         "simulation.seed",
	"workers":      "simulation.workers",
	"min-steps":    "convergence.min_steps",
	"max-steps":    "convergence.max_steps",
	"stride":       "convergence.stride",
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./crr.yaml or ~/.crr/crr.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(convergeCmd)
	rootCmd.AddCommand(slackCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crr %s (commit %s)\n", version, commit)
	},
}
