// Package main implements the drawplan command line interface: household
// drawdown projections, plan validation, and reference table printing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.9.0"

var (
	// Global flags
	configPath string
	debug      bool
	quiet      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "drawplan",
	Short: "drawplan - multi-account retirement drawdown planner",
	Long: `drawplan projects a household's retirement drawdown year by year:
spending needs, withdrawal allocation across savings, Roth, and 401k
accounts, required minimum distributions, Social Security taxation,
and federal income tax.

Plans are described in a YAML file; run "drawplan example" to print a
starting template.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if debug {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if quiet {
			config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the drawplan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("drawplan %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the plan YAML file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging and engine diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exampleCmd)
	rootCmd.AddCommand(rmdTableCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
