// Plan inspection commands: validate, example template, and the RMD
// reference table.
package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/drawplan/withdrawal-planner/internal/calculation"
	"github.com/drawplan/withdrawal-planner/internal/config"
	"github.com/drawplan/withdrawal-planner/internal/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a plan file without running the projection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPlan()
		if err != nil {
			return err
		}

		fmt.Printf("Plan %q is valid.\n", cfg.PlanName)
		fmt.Printf("  Subject: %s (born %d, retires at %d)\n",
			cfg.Household.Subject.Name, cfg.Household.Subject.BirthYear, cfg.Household.Subject.RetirementAge)
		if partner := cfg.Household.Partner; partner != nil {
			fmt.Printf("  Partner: %s (born %d, retires at %d)\n",
				partner.Name, partner.BirthYear, partner.RetirementAge)
		}
		fmt.Printf("  Filing: %s\n", cfg.Household.FilingStatus)
		fmt.Printf("  Horizon: %d years from %d\n", cfg.Fiscal.ProjectionYears, cfg.Fiscal.BaseYear)
		return nil
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example [file]",
	Short: "Print an annotated example plan (or write it to a file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yamlText := config.NewInputParser().ExampleConfigurationYAML()
		if len(args) == 0 {
			fmt.Print(yamlText)
			return nil
		}
		if err := os.WriteFile(args[0], []byte(yamlText), 0644); err != nil {
			return fmt.Errorf("failed to write example plan: %w", err)
		}
		logger.Sugar().Infof("example plan written to %s", args[0])
		return nil
	},
}

var rmdBalance string

var rmdTableCmd = &cobra.Command{
	Use:   "rmd-table",
	Short: "Print the IRS Uniform Lifetime divisor table",
	Long: `Prints the divisor applied to the prior-year 401k balance for each
attained age from the RMD start age through 100. With --balance the
required distribution for that balance is shown alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := calculation.NewRMDCalculator(true)

		var balance decimal.Decimal
		withBalance := rmdBalance != ""
		if withBalance {
			var err error
			balance, err = decimal.NewFromString(rmdBalance)
			if err != nil {
				return fmt.Errorf("invalid --balance %q: %w", rmdBalance, err)
			}
		}

		if withBalance {
			fmt.Printf("%-5s %-9s %s\n", "AGE", "DIVISOR", "RMD")
		} else {
			fmt.Printf("%-5s %s\n", "AGE", "DIVISOR")
		}
		for age := calculation.RMDStartAge; age <= 100; age++ {
			divisor := rc.DivisorForAge(age)
			if withBalance {
				fmt.Printf("%-5d %-9s %s\n", age, divisor.StringFixed(1), output.FormatCurrency(rc.CalculateRMD(age, balance)))
			} else {
				fmt.Printf("%-5d %s\n", age, divisor.StringFixed(1))
			}
		}
		fmt.Println("Past age 100 the divisor declines by 0.1 per year (never below 1.0).")
		return nil
	},
}

func init() {
	rmdTableCmd.Flags().StringVar(&rmdBalance, "balance", "", "Prior-year 401k balance to compute distributions for")
}
