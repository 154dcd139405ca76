package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drawplan/withdrawal-planner/internal/calculation"
	"github.com/drawplan/withdrawal-planner/internal/config"
	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/internal/output"
)

var (
	reportFormat string
	outputDir    string
)

// projectCmd runs the full drawdown projection
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Run the drawdown projection for a plan",
	Long: `Loads the plan YAML, projects every year of the horizon, and renders
the result. With --output the report is written as a timestamped file
into that directory; otherwise it prints to stdout.

Formats: ` + strings.Join(output.AvailableFormatterNames(), ", ") + `
(or "all" to write every format at once, which requires --output).`,
	RunE: runProjection,
}

func init() {
	projectCmd.Flags().StringVarP(&reportFormat, "format", "f", "console", "Report format")
	projectCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write report files into")
}

func runProjection(cmd *cobra.Command, args []string) error {
	cfg, err := loadPlan()
	if err != nil {
		return err
	}

	engine := calculation.NewCalculationEngineWithConfig(cfg)
	engine.Debug = debug
	engine.SetLogger(logger.Sugar())

	projection, err := engine.RunPlan(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	if outputDir != "" || output.NormalizeFormatName(reportFormat) == "all" {
		if err := output.GenerateReport(projection, reportFormat, outputDir); err != nil {
			return err
		}
		logger.Sugar().Infof("reports written to %s", reportDir())
		return nil
	}

	f := output.GetFormatterByName(reportFormat)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s", output.ErrUnsupportedFormat, reportFormat,
			strings.Join(output.AvailableFormatterNames(), ", "))
	}
	rendered, err := f.Format(projection)
	if err != nil {
		return fmt.Errorf("%s report: %w", f.Name(), err)
	}
	_, err = os.Stdout.Write(rendered)
	return err
}

func reportDir() string {
	if outputDir != "" {
		return outputDir
	}
	return "."
}

// loadPlan reads and validates the plan named by --config.
func loadPlan() (*domain.PlanConfig, error) {
	if configPath == "" {
		return nil, fmt.Errorf("a plan file is required (use --config plan.yaml)")
	}
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
