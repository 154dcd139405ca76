package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

func TestCalculateTaxMFJ(t *testing.T) {
	calc := NewFederalTaxCalculator()

	tests := []struct {
		name        string
		gross       decimal.Decimal
		expectedTax decimal.Decimal
		description string
	}{
		{
			name:        "Income below standard deduction",
			gross:       decimal.NewFromInt(25000),
			expectedTax: decimal.Zero,
			description: "Deduction wipes out all taxable income",
		},
		{
			name:        "Income exactly at deduction",
			gross:       decimal.NewFromInt(30000),
			expectedTax: decimal.Zero,
			description: "Taxable income is zero at the deduction boundary",
		},
		{
			name:        "Middle income",
			gross:       decimal.NewFromInt(100000),
			expectedTax: decimal.NewFromInt(7936),
			description: "70000 taxable: 10% of 23200 plus 12% of 46800",
		},
		{
			name:        "High income through five brackets",
			gross:       decimal.NewFromInt(500000),
			expectedTax: decimal.NewFromInt(105773),
			description: "470000 taxable walks brackets through 32%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.CalculateTax(tt.gross, domain.FilingMarriedJointly, 2025)
			assert.NoError(t, err)
			assert.True(t, result.FederalTax.Equal(tt.expectedTax),
				"%s: expected %s, got %s", tt.description, tt.expectedTax, result.FederalTax)
		})
	}
}

func TestCalculateTaxSingle(t *testing.T) {
	calc := NewFederalTaxCalculator()

	result, err := calc.CalculateTax(decimal.NewFromInt(50000), domain.FilingSingle, 2025)
	assert.NoError(t, err)

	// 35000 taxable: 10% of 11600 plus 12% of 23400
	expected := decimal.NewFromInt(3968)
	assert.True(t, result.FederalTax.Equal(expected), "expected %s, got %s", expected, result.FederalTax)
	assert.True(t, result.StandardDeduction.Equal(decimal.NewFromInt(15000)))
}

func TestCalculateTaxResultFields(t *testing.T) {
	calc := NewFederalTaxCalculator()

	result, err := calc.CalculateTax(decimal.NewFromInt(100000), domain.FilingMarriedJointly, 2025)
	assert.NoError(t, err)
	assert.Equal(t, 2025, result.Year)
	assert.Equal(t, domain.FilingMarriedJointly, result.FilingStatus)
	assert.True(t, result.AGI.Equal(decimal.NewFromInt(100000)))
	assert.True(t, result.TaxableIncome.Equal(decimal.NewFromInt(70000)))
	assert.True(t, result.EffectiveRate.Equal(decimal.RequireFromString("0.0794")),
		"expected effective rate 0.0794, got %s", result.EffectiveRate)
}

func TestInflationIndexing(t *testing.T) {
	calc := NewFederalTaxCalculator()
	calc.InflationRate = decimal.NewFromFloat(0.025)

	tests := []struct {
		name              string
		taxYear           int
		expectedDeduction decimal.Decimal
		description       string
	}{
		{
			name:              "Base year unindexed",
			taxYear:           2025,
			expectedDeduction: decimal.NewFromInt(30000),
			description:       "Factor is one in the base year",
		},
		{
			name:              "One year of indexing",
			taxYear:           2026,
			expectedDeduction: decimal.NewFromInt(30750),
			description:       "30000 times 1.025",
		},
		{
			name:              "Two years compound",
			taxYear:           2027,
			expectedDeduction: decimal.RequireFromString("31518.75"),
			description:       "30000 times 1.025 squared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deduction := calc.StandardDeductionFor(domain.FilingMarriedJointly, tt.taxYear)
			assert.True(t, deduction.Equal(tt.expectedDeduction),
				"%s: expected %s, got %s", tt.description, tt.expectedDeduction, deduction)
		})
	}
}

func TestIndexedBracketWalk(t *testing.T) {
	calc := NewFederalTaxCalculator()
	calc.InflationRate = decimal.NewFromFloat(0.025)

	result, err := calc.CalculateTax(decimal.NewFromInt(100000), domain.FilingMarriedJointly, 2026)
	assert.NoError(t, err)

	// Taxable 69250 against bounds 23780 and 96657.50
	expected := decimal.RequireFromString("7834.40")
	difference := result.FederalTax.Sub(expected).Abs()
	assert.True(t, difference.LessThan(decimal.NewFromFloat(0.01)),
		"expected %s, got %s", expected, result.FederalTax)
}

func TestBracketsForIndexesBounds(t *testing.T) {
	calc := NewFederalTaxCalculator()
	calc.InflationRate = decimal.NewFromFloat(0.025)

	brackets := calc.BracketsFor(domain.FilingMarriedJointly, 2026)
	assert.True(t, brackets[0].UpTo.Equal(decimal.NewFromInt(23780)),
		"expected first bound 23780, got %s", brackets[0].UpTo)
	assert.True(t, brackets[0].Rate.Equal(decimal.NewFromFloat(0.10)), "rates are never indexed")
}

func TestCalculateTaxInvariants(t *testing.T) {
	calc := NewFederalTaxCalculator()
	calc.BracketsMFJ = []TaxBracket{{Rate: decimal.NewFromInt(-1), UpTo: openEndedBound}}

	_, err := calc.CalculateTax(decimal.NewFromInt(100000), domain.FilingMarriedJointly, 2025)
	assert.Error(t, err, "negative tax must surface as an error")

	calc.BracketsMFJ = []TaxBracket{{Rate: decimal.NewFromInt(2), UpTo: openEndedBound}}
	_, err = calc.CalculateTax(decimal.NewFromInt(100000), domain.FilingMarriedJointly, 2025)
	assert.Error(t, err, "tax above taxable income must surface as an error")
}

func TestCalculateTaxWithConfigOverrides(t *testing.T) {
	rules := &domain.TaxRules{
		FederalTax: &domain.FederalTaxConfig{
			StandardDeductionMFJ: decimal.NewFromInt(20000),
			BracketsMFJ: []domain.TaxBracketConfig{
				{Rate: decimal.NewFromFloat(0.10), UpTo: decimal.NewFromInt(50000)},
				{Rate: decimal.NewFromFloat(0.20)},
			},
		},
	}
	calc := NewFederalTaxCalculatorWithConfig(rules, decimal.Zero, 2025)

	result, err := calc.CalculateTax(decimal.NewFromInt(100000), domain.FilingMarriedJointly, 2025)
	assert.NoError(t, err)

	// 80000 taxable: 10% of 50000 plus 20% of 30000
	expected := decimal.NewFromInt(11000)
	assert.True(t, result.FederalTax.Equal(expected), "expected %s, got %s", expected, result.FederalTax)

	// Single tables fall back to the defaults
	assert.True(t, calc.StandardDeductionSingle.Equal(decimal.NewFromInt(15000)))
}
