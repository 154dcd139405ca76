package domain

import (
	"github.com/shopspring/decimal"
)

// AnnualSummary is one projected plan year: who was alive, what income
// arrived, what the allocator withdrew, and what the year cost in tax.
type AnnualSummary struct {
	Year         int          `json:"year"`
	SubjectAge   int          `json:"subject_age"`
	PartnerAge   int          `json:"partner_age,omitempty"`
	SubjectAlive bool         `json:"subject_alive"`
	PartnerAlive bool         `json:"partner_alive,omitempty"`
	Retired      bool         `json:"retired"`
	FilingStatus FilingStatus `json:"filing_status"`

	SubjectSSGross decimal.Decimal `json:"subject_ss_gross"`
	PartnerSSGross decimal.Decimal `json:"partner_ss_gross"`
	PensionIncome  decimal.Decimal `json:"pension_income"`
	CashOnHand     decimal.Decimal `json:"cash_on_hand"`

	TargetSpend decimal.Decimal `json:"target_spend"`
	Ask         decimal.Decimal `json:"ask"`

	Plan  WithdrawalPlan `json:"plan"`
	SSTax SSTaxBreakdown `json:"ss_tax"`
	Tax   TaxResult      `json:"tax"`

	EndingBalances map[AccountKind]decimal.Decimal `json:"ending_balances"`
	NetWorth       decimal.Decimal                 `json:"net_worth"`

	// NetIncome is cash on hand plus withdrawn cash less federal tax owed.
	NetIncome decimal.Decimal `json:"net_income"`
}

// TotalIncome returns the cash available for spending before tax.
func (s *AnnualSummary) TotalIncome() decimal.Decimal {
	return s.CashOnHand.Add(s.Plan.TotalWithdrawn)
}

// PlanProjection is the full multi-year result for one plan.
type PlanProjection struct {
	PlanName string          `json:"plan_name"`
	BaseYear int             `json:"base_year"`
	Years    []AnnualSummary `json:"years"`

	// Assumptions holds the fiscal parameters rendered as report lines.
	Assumptions []string `json:"assumptions,omitempty"`

	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalFederalTax  decimal.Decimal `json:"total_federal_tax"`

	// FirstShortfallYear is the first calendar year whose plan left part of
	// the ask unfunded, zero when every year was fully funded.
	FirstShortfallYear int `json:"first_shortfall_year,omitempty"`

	EndingNetWorth decimal.Decimal `json:"ending_net_worth"`
}

// YearSummary returns the row for a calendar year, nil when outside the
// projection.
func (p *PlanProjection) YearSummary(year int) *AnnualSummary {
	for i := range p.Years {
		if p.Years[i].Year == year {
			return &p.Years[i]
		}
	}
	return nil
}

// FinalYear returns the last projected row, nil for an empty projection.
func (p *PlanProjection) FinalYear() *AnnualSummary {
	if len(p.Years) == 0 {
		return nil
	}
	return &p.Years[len(p.Years)-1]
}
