package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// DefaultBaseYear anchors the built-in tax tables and inflation indexing.
const DefaultBaseYear = 2025

// openEndedBound marks the top bracket. Indexing inflates it along with the
// real bounds; it stays far above any plannable income.
var openEndedBound = decimal.NewFromInt(999999999)

// TaxBracket is one federal bracket: taxable income up to UpTo, taxed at Rate.
type TaxBracket struct {
	Rate decimal.Decimal
	UpTo decimal.Decimal
}

// FederalTaxCalculator computes federal income tax with a standard deduction
// and progressive brackets, both stated in base-year dollars and indexed by
// inflation for later tax years.
type FederalTaxCalculator struct {
	BaseYear      int
	InflationRate decimal.Decimal

	StandardDeductionMFJ    decimal.Decimal
	StandardDeductionSingle decimal.Decimal
	BracketsMFJ             []TaxBracket
	BracketsSingle          []TaxBracket
}

// NewFederalTaxCalculator creates a calculator with the built-in 2025 tables
// and no inflation indexing.
func NewFederalTaxCalculator() *FederalTaxCalculator {
	return &FederalTaxCalculator{
		BaseYear:                DefaultBaseYear,
		InflationRate:           decimal.Zero,
		StandardDeductionMFJ:    decimal.NewFromInt(30000),
		StandardDeductionSingle: decimal.NewFromInt(15000),
		BracketsMFJ:             defaultBracketsMFJ(),
		BracketsSingle:          defaultBracketsSingle(),
	}
}

// NewFederalTaxCalculatorWithConfig creates a calculator from configured tax
// rules, falling back to the built-in tables for any missing piece.
func NewFederalTaxCalculatorWithConfig(rules *domain.TaxRules, inflationRate decimal.Decimal, baseYear int) *FederalTaxCalculator {
	calc := NewFederalTaxCalculator()
	calc.InflationRate = inflationRate
	if baseYear > 0 {
		calc.BaseYear = baseYear
	}
	if rules == nil || rules.FederalTax == nil {
		return calc
	}

	fed := rules.FederalTax
	if fed.StandardDeductionMFJ.IsPositive() {
		calc.StandardDeductionMFJ = fed.StandardDeductionMFJ
	}
	if fed.StandardDeductionSingle.IsPositive() {
		calc.StandardDeductionSingle = fed.StandardDeductionSingle
	}
	if len(fed.BracketsMFJ) > 0 {
		calc.BracketsMFJ = bracketsFromConfig(fed.BracketsMFJ)
	}
	if len(fed.BracketsSingle) > 0 {
		calc.BracketsSingle = bracketsFromConfig(fed.BracketsSingle)
	}
	return calc
}

func defaultBracketsMFJ() []TaxBracket {
	return []TaxBracket{
		{Rate: decimal.NewFromFloat(0.10), UpTo: decimal.NewFromInt(23200)},
		{Rate: decimal.NewFromFloat(0.12), UpTo: decimal.NewFromInt(94300)},
		{Rate: decimal.NewFromFloat(0.22), UpTo: decimal.NewFromInt(201050)},
		{Rate: decimal.NewFromFloat(0.24), UpTo: decimal.NewFromInt(383900)},
		{Rate: decimal.NewFromFloat(0.32), UpTo: decimal.NewFromInt(487450)},
		{Rate: decimal.NewFromFloat(0.35), UpTo: decimal.NewFromInt(731200)},
		{Rate: decimal.NewFromFloat(0.37), UpTo: openEndedBound},
	}
}

func defaultBracketsSingle() []TaxBracket {
	return []TaxBracket{
		{Rate: decimal.NewFromFloat(0.10), UpTo: decimal.NewFromInt(11600)},
		{Rate: decimal.NewFromFloat(0.12), UpTo: decimal.NewFromInt(47150)},
		{Rate: decimal.NewFromFloat(0.22), UpTo: decimal.NewFromInt(100525)},
		{Rate: decimal.NewFromFloat(0.24), UpTo: decimal.NewFromInt(191950)},
		{Rate: decimal.NewFromFloat(0.32), UpTo: decimal.NewFromInt(243725)},
		{Rate: decimal.NewFromFloat(0.35), UpTo: decimal.NewFromInt(609350)},
		{Rate: decimal.NewFromFloat(0.37), UpTo: openEndedBound},
	}
}

// bracketsFromConfig converts configured brackets. A zero UpTo on the final
// bracket means open-ended.
func bracketsFromConfig(configured []domain.TaxBracketConfig) []TaxBracket {
	brackets := make([]TaxBracket, 0, len(configured))
	for i, b := range configured {
		upTo := b.UpTo
		if upTo.IsZero() && i == len(configured)-1 {
			upTo = openEndedBound
		}
		brackets = append(brackets, TaxBracket{Rate: b.Rate, UpTo: upTo})
	}
	return brackets
}

// indexFactor returns (1 + inflation)^(taxYear - BaseYear). Years at or
// before the base year use a factor of one.
func (f *FederalTaxCalculator) indexFactor(taxYear int) decimal.Decimal {
	years := taxYear - f.BaseYear
	if years <= 0 || f.InflationRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	base := decimal.NewFromInt(1).Add(f.InflationRate)
	return base.Pow(decimal.NewFromInt(int64(years)))
}

// StandardDeductionFor returns the inflation-indexed standard deduction for a
// filing status and tax year, rounded to cents.
func (f *FederalTaxCalculator) StandardDeductionFor(status domain.FilingStatus, taxYear int) decimal.Decimal {
	base := f.StandardDeductionMFJ
	if status == domain.FilingSingle {
		base = f.StandardDeductionSingle
	}
	return money.RoundCents(base.Mul(f.indexFactor(taxYear)))
}

// BracketsFor returns the inflation-indexed brackets for a filing status and
// tax year. Bounds are rounded to cents; rates are untouched.
func (f *FederalTaxCalculator) BracketsFor(status domain.FilingStatus, taxYear int) []TaxBracket {
	base := f.BracketsMFJ
	if status == domain.FilingSingle {
		base = f.BracketsSingle
	}
	factor := f.indexFactor(taxYear)
	indexed := make([]TaxBracket, len(base))
	for i, b := range base {
		indexed[i] = TaxBracket{Rate: b.Rate, UpTo: money.RoundCents(b.UpTo.Mul(factor))}
	}
	return indexed
}

// CalculateTax computes the federal tax result for one year's gross taxable
// income. A negative tax or a tax exceeding taxable income indicates an
// inconsistent table and is returned as an error, never clamped.
func (f *FederalTaxCalculator) CalculateTax(grossTaxableIncome decimal.Decimal, status domain.FilingStatus, taxYear int) (*domain.TaxResult, error) {
	agi := grossTaxableIncome
	deduction := f.StandardDeductionFor(status, taxYear)

	taxable := agi.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := decimal.Zero
	previousUpTo := decimal.Zero
	for _, bracket := range f.BracketsFor(status, taxYear) {
		if taxable.LessThanOrEqual(previousUpTo) {
			break
		}
		incomeInBracket := decimal.Min(taxable, bracket.UpTo).Sub(previousUpTo)
		tax = tax.Add(incomeInBracket.Mul(bracket.Rate))
		previousUpTo = bracket.UpTo
	}
	tax = money.RoundCents(tax)

	if tax.IsNegative() {
		return nil, fmt.Errorf("federal tax for %d is negative (%s) on taxable income %s", taxYear, tax, taxable)
	}
	if tax.GreaterThan(taxable) {
		return nil, fmt.Errorf("federal tax for %d (%s) exceeds taxable income (%s)", taxYear, tax, taxable)
	}

	effectiveRate := decimal.Zero
	if agi.IsPositive() {
		effectiveRate = tax.Div(agi).Round(4)
	}

	return &domain.TaxResult{
		Year:               taxYear,
		FilingStatus:       status,
		GrossTaxableIncome: money.RoundCents(grossTaxableIncome),
		AGI:                money.RoundCents(agi),
		StandardDeduction:  deduction,
		TaxableIncome:      money.RoundCents(taxable),
		FederalTax:         tax,
		EffectiveRate:      effectiveRate,
	}, nil
}
