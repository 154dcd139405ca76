package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// CalculationEngine orchestrates a full plan projection: ledger bookkeeping,
// the annual withdrawal waterfall, and the year's taxes.
type CalculationEngine struct {
	FederalTax *FederalTaxCalculator
	SSTax      *SocialSecurityTaxCalculator
	RMD        *RMDCalculator
	Debug      bool
	Logger     Logger
}

// NewCalculationEngine creates an engine with the built-in tax tables.
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{
		FederalTax: NewFederalTaxCalculator(),
		SSTax:      NewSocialSecurityTaxCalculator(),
		RMD:        NewRMDCalculator(true),
		Logger:     NopLogger{},
	}
}

// NewCalculationEngineWithConfig creates an engine whose calculators follow
// the plan's tax rules, inflation assumption, and RMD flag.
func NewCalculationEngineWithConfig(cfg *domain.PlanConfig) *CalculationEngine {
	return &CalculationEngine{
		FederalTax: NewFederalTaxCalculatorWithConfig(cfg.TaxRules, cfg.Fiscal.InflationRate, cfg.Fiscal.BaseYear),
		SSTax:      NewSocialSecurityTaxCalculatorWithConfig(cfg.TaxRules),
		RMD:        NewRMDCalculator(cfg.Fiscal.UseRMD),
		Logger:     NopLogger{},
	}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a
// no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunPlan projects a plan across its full horizon and aggregates the result.
func (ce *CalculationEngine) RunPlan(ctx context.Context, cfg *domain.PlanConfig) (*domain.PlanProjection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("plan configuration is required")
	}

	fiscal := &cfg.Fiscal
	if fiscal.ProjectionYears < 1 {
		return nil, fmt.Errorf("projection years must be at least 1, got %d", fiscal.ProjectionYears)
	}
	if fiscal.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) || fiscal.InflationRate.GreaterThan(decimal.NewFromFloat(0.20)) {
		return nil, fmt.Errorf("inflation rate must be between -10%% and 20%%, got %s%%",
			fiscal.InflationRate.Mul(decimal.NewFromInt(100)).StringFixed(2))
	}
	if fiscal.AnnualSpend.IsNegative() {
		return nil, fmt.Errorf("annual spend cannot be negative, got %s", fiscal.AnnualSpend)
	}

	years, err := ce.GenerateAnnualProjection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	projection := &domain.PlanProjection{
		PlanName:    cfg.PlanName,
		BaseYear:    fiscal.BaseYear,
		Years:       years,
		Assumptions: fiscal.GenerateAssumptions(),
	}
	for i := range years {
		row := &years[i]
		projection.TotalWithdrawals = projection.TotalWithdrawals.Add(row.Plan.TotalWithdrawn)
		projection.TotalFederalTax = projection.TotalFederalTax.Add(row.Tax.FederalTax)
		if projection.FirstShortfallYear == 0 && row.Plan.HasShortfall() {
			projection.FirstShortfallYear = row.Year
		}
	}
	if final := projection.FinalYear(); final != nil {
		projection.EndingNetWorth = final.NetWorth
	}

	ce.Logger.Debugf("plan %q: %d years projected, %s withdrawn, %s federal tax, ending net worth %s",
		cfg.PlanName, len(years),
		projection.TotalWithdrawals.StringFixed(2),
		projection.TotalFederalTax.StringFixed(2),
		projection.EndingNetWorth.StringFixed(2))

	return projection, nil
}
