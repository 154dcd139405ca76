package output

import (
	"bytes"
	"fmt"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// ConsoleVerboseFormatter renders the full year-by-year report with the
// first retirement year broken down line by line.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(projection *domain.PlanProjection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "RETIREMENT DRAWDOWN PROJECTION")
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Plan: %s\n", projection.PlanName)
	if n := len(projection.Years); n > 0 {
		fmt.Fprintf(&buf, "Horizon: %d-%d (%d years)\n", projection.Years[0].Year, projection.Years[n-1].Year, n)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	assumptions := projection.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writeYearTable(&buf, projection)

	if row := firstRetiredYear(projection); row != nil {
		writeYearBreakdown(&buf, row)
	}

	writePlanHealth(&buf, projection)

	return buf.Bytes(), nil
}

// firstRetiredYear returns the earliest projected year with the household in
// retirement, nil when the horizon ends before retirement.
func firstRetiredYear(projection *domain.PlanProjection) *domain.AnnualSummary {
	for i := range projection.Years {
		if projection.Years[i].Retired {
			return &projection.Years[i]
		}
	}
	return nil
}

func writeYearTable(buf *bytes.Buffer, projection *domain.PlanProjection) {
	fmt.Fprintln(buf, "YEAR-BY-YEAR PROJECTION")
	fmt.Fprintln(buf, "-----------------------")
	fmt.Fprintf(buf, "%-6s %-7s %-9s %14s %14s %14s %12s %12s %14s\n",
		"YEAR", "AGES", "STATUS", "TARGET", "CASH", "WITHDRAWN", "SHORTFALL", "FED TAX", "NET WORTH")
	for i := range projection.Years {
		row := &projection.Years[i]
		fmt.Fprintf(buf, "%-6d %-7s %-9s %14s %14s %14s %12s %12s %14s\n",
			row.Year,
			agesLabel(row),
			statusLabel(row),
			FormatCurrency(row.TargetSpend),
			FormatCurrency(row.CashOnHand),
			FormatCurrency(row.Plan.TotalWithdrawn),
			FormatCurrency(row.Plan.Shortfall),
			FormatCurrency(row.Tax.FederalTax),
			FormatCurrency(row.NetWorth),
		)
	}
	fmt.Fprintln(buf)
}

func agesLabel(row *domain.AnnualSummary) string {
	subject := "-"
	if row.SubjectAlive {
		subject = intToString(row.SubjectAge)
	}
	if row.PartnerAge == 0 {
		return subject
	}
	partner := "-"
	if row.PartnerAlive {
		partner = intToString(row.PartnerAge)
	}
	return subject + "/" + partner
}

func statusLabel(row *domain.AnnualSummary) string {
	if !row.SubjectAlive && row.PartnerAlive {
		return "survivor"
	}
	if row.Retired {
		return "retired"
	}
	return "working"
}

func writeYearBreakdown(buf *bytes.Buffer, row *domain.AnnualSummary) {
	fmt.Fprintf(buf, "FIRST RETIREMENT YEAR (%d) BREAKDOWN:\n", row.Year)
	fmt.Fprintln(buf, "----------------------------------------")
	fmt.Fprintln(buf, "INCOME SOURCES:")
	fmt.Fprintf(buf, "  Subject Social Security:  %s\n", FormatCurrency(row.SubjectSSGross))
	fmt.Fprintf(buf, "  Partner Social Security:  %s\n", FormatCurrency(row.PartnerSSGross))
	fmt.Fprintf(buf, "  Pension:                  %s\n", FormatCurrency(row.PensionIncome))
	fmt.Fprintf(buf, "  Cash On Hand (after SS withholding): %s\n", FormatCurrency(row.CashOnHand))
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "WITHDRAWALS:")
	fmt.Fprintf(buf, "  Target Spend:             %s\n", FormatCurrency(row.TargetSpend))
	fmt.Fprintf(buf, "  Ask (target less cash):   %s\n", FormatCurrency(row.Ask))
	fmt.Fprintf(buf, "  Savings:                  %s\n", FormatCurrency(row.Plan.Savings))
	fmt.Fprintf(buf, "  Roth (combined):          %s\n", FormatCurrency(row.Plan.RothCombined))
	fmt.Fprintf(buf, "  401k Gross:               %s\n", FormatCurrency(row.Plan.K401.CombinedGross))
	fmt.Fprintf(buf, "  401k Net (after withholding): %s\n", FormatCurrency(row.Plan.K401.CombinedNet))
	fmt.Fprintf(buf, "  TOTAL WITHDRAWN (net):    %s\n", FormatCurrency(row.Plan.TotalWithdrawn))
	if row.Plan.HasShortfall() {
		fmt.Fprintf(buf, "  SHORTFALL:                %s\n", FormatCurrency(row.Plan.Shortfall))
	}
	fmt.Fprintln(buf)
	if len(row.Plan.Decisions) > 0 {
		fmt.Fprintln(buf, "ALLOCATION DECISIONS:")
		for _, d := range row.Plan.Decisions {
			line := fmt.Sprintf("  [%s] %s %s", d.Account, d.Action, FormatCurrency(d.Amount))
			if d.Note != "" {
				line += " (" + d.Note + ")"
			}
			fmt.Fprintln(buf, line)
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintln(buf, "TAXES:")
	fmt.Fprintf(buf, "  Taxable Social Security:  %s\n", FormatCurrency(row.SSTax.TaxableAmount))
	fmt.Fprintf(buf, "  Taxable Income:           %s\n", FormatCurrency(row.Tax.TaxableIncome))
	fmt.Fprintf(buf, "  Federal Tax:              %s\n", FormatCurrency(row.Tax.FederalTax))
	fmt.Fprintf(buf, "  Effective Rate:           %s\n", FormatPercentage(row.Tax.EffectiveRate.Mul(decimalHundred)))
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "  NET INCOME:               %s\n", FormatCurrency(row.NetIncome))
	fmt.Fprintln(buf)
}

func writePlanHealth(buf *bytes.Buffer, projection *domain.PlanProjection) {
	a := AssessProjection(projection)
	fmt.Fprintln(buf, "PLAN HEALTH")
	fmt.Fprintln(buf, "===========")
	fmt.Fprintf(buf, "Funded years:        %d of %d\n", a.FundedYears, a.YearsProjected)
	if a.FullyFunded() {
		fmt.Fprintln(buf, "First shortfall:     none")
	} else {
		fmt.Fprintf(buf, "First shortfall:     %d\n", a.FirstShortfallYear)
		fmt.Fprintf(buf, "Total shortfall:     %s\n", FormatCurrency(a.TotalShortfall))
	}
	fmt.Fprintf(buf, "Total withdrawals:   %s\n", FormatCurrency(projection.TotalWithdrawals))
	fmt.Fprintf(buf, "Total federal tax:   %s\n", FormatCurrency(projection.TotalFederalTax))
	if a.PeakNetWorthYear > 0 {
		fmt.Fprintf(buf, "Peak net worth:      %s (%d)\n", FormatCurrency(a.PeakNetWorth), a.PeakNetWorthYear)
	}
	fmt.Fprintf(buf, "Ending net worth:    %s\n", FormatCurrency(projection.EndingNetWorth))
}
