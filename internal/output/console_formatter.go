package output

import (
	"bytes"
	"fmt"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(projection *domain.PlanProjection) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT DRAWDOWN SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Plan: %s\n", projection.PlanName)
	if n := len(projection.Years); n > 0 {
		fmt.Fprintf(&buf, "Horizon: %d-%d (%d years)\n", projection.Years[0].Year, projection.Years[n-1].Year, n)
	}
	fmt.Fprintln(&buf)

	a := AssessProjection(projection)
	fmt.Fprintf(&buf, "Funded: %d/%d years\n", a.FundedYears, a.YearsProjected)
	if a.FullyFunded() {
		fmt.Fprintln(&buf, "First shortfall: none")
	} else {
		fmt.Fprintf(&buf, "First shortfall: %d (total short %s)\n", a.FirstShortfallYear, FormatCurrency(a.TotalShortfall))
	}
	fmt.Fprintf(&buf, "Total withdrawn: %s\n", FormatCurrency(projection.TotalWithdrawals))
	fmt.Fprintf(&buf, "Total federal tax: %s\n", FormatCurrency(projection.TotalFederalTax))
	fmt.Fprintf(&buf, "Ending net worth: %s\n", FormatCurrency(projection.EndingNetWorth))

	if final := projection.FinalYear(); final != nil {
		fmt.Fprintf(&buf, "Final year %d: net income %s, net worth %s\n",
			final.Year, FormatCurrency(final.NetIncome), FormatCurrency(final.NetWorth))
	}
	return buf.Bytes(), nil
}
