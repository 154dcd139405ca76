package output

import (
	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// Assessment summarizes how well a projection held up over its horizon.
type Assessment struct {
	YearsProjected     int
	FundedYears        int
	ShortfallYears     int
	FirstShortfallYear int
	TotalShortfall     decimal.Decimal
	PeakNetWorth       decimal.Decimal
	PeakNetWorthYear   int
	EndingNetWorth     decimal.Decimal
}

// FullyFunded reports whether every projected year met its spending target.
func (a Assessment) FullyFunded() bool { return a.ShortfallYears == 0 }

// AssessProjection walks the projection once and derives the plan health
// figures shared by the console and PDF reports.
func AssessProjection(p *domain.PlanProjection) Assessment {
	a := Assessment{YearsProjected: len(p.Years)}
	for i := range p.Years {
		row := &p.Years[i]
		if row.Plan.HasShortfall() {
			a.ShortfallYears++
			a.TotalShortfall = a.TotalShortfall.Add(row.Plan.Shortfall)
			if a.FirstShortfallYear == 0 {
				a.FirstShortfallYear = row.Year
			}
		} else {
			a.FundedYears++
		}
		if row.NetWorth.GreaterThan(a.PeakNetWorth) {
			a.PeakNetWorth = row.NetWorth
			a.PeakNetWorthYear = row.Year
		}
	}
	if final := p.FinalYear(); final != nil {
		a.EndingNetWorth = final.NetWorth
	}
	return a
}
