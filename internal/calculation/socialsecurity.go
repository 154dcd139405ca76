package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/money"
)

// SocialSecurityTaxCalculator applies the tiered provisional-income rules
// that determine how much of a household's Social Security benefits is
// federally taxable.
type SocialSecurityTaxCalculator struct {
	ThresholdsMFJ    domain.SSThresholds
	ThresholdsSingle domain.SSThresholds
}

// NewSocialSecurityTaxCalculator creates a calculator with the statutory
// thresholds: 32,000/44,000 married filing jointly, 25,000/34,000 single.
func NewSocialSecurityTaxCalculator() *SocialSecurityTaxCalculator {
	return &SocialSecurityTaxCalculator{
		ThresholdsMFJ: domain.SSThresholds{
			Threshold1: decimal.NewFromInt(32000),
			Threshold2: decimal.NewFromInt(44000),
		},
		ThresholdsSingle: domain.SSThresholds{
			Threshold1: decimal.NewFromInt(25000),
			Threshold2: decimal.NewFromInt(34000),
		},
	}
}

// NewSocialSecurityTaxCalculatorWithConfig creates a calculator with
// configured thresholds, falling back to the statutory pairs when absent.
func NewSocialSecurityTaxCalculatorWithConfig(rules *domain.TaxRules) *SocialSecurityTaxCalculator {
	calc := NewSocialSecurityTaxCalculator()
	if rules == nil || rules.SocialSecurityThresholds == nil {
		return calc
	}
	if rules.SocialSecurityThresholds.MarriedFilingJointly.Threshold1.IsPositive() {
		calc.ThresholdsMFJ = rules.SocialSecurityThresholds.MarriedFilingJointly
	}
	if rules.SocialSecurityThresholds.Single.Threshold1.IsPositive() {
		calc.ThresholdsSingle = rules.SocialSecurityThresholds.Single
	}
	return calc
}

// ThresholdsFor returns the provisional-income threshold pair for a status.
func (s *SocialSecurityTaxCalculator) ThresholdsFor(status domain.FilingStatus) domain.SSThresholds {
	if status == domain.FilingSingle {
		return s.ThresholdsSingle
	}
	return s.ThresholdsMFJ
}

// TaxableBenefits computes the taxable and non-taxable portions of the
// household's Social Security benefits for one year, with per-person
// apportionment proportional to each person's share of gross benefits.
func (s *SocialSecurityTaxCalculator) TaxableBenefits(subjectGross, partnerGross, otherTaxableIncome decimal.Decimal, status domain.FilingStatus) *domain.SSTaxBreakdown {
	half := decimal.NewFromFloat(0.5)
	rate85 := decimal.NewFromFloat(0.85)
	thresholds := s.ThresholdsFor(status)

	total := subjectGross.Add(partnerGross)
	breakdown := &domain.SSTaxBreakdown{
		FilingStatus:       status,
		SubjectGross:       subjectGross,
		PartnerGross:       partnerGross,
		TotalGross:         total,
		OtherTaxableIncome: otherTaxableIncome,
		Threshold1:         thresholds.Threshold1,
		Threshold2:         thresholds.Threshold2,
		ProvisionalIncome:  otherTaxableIncome.Add(total.Mul(half)),
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return breakdown
	}

	provisional := breakdown.ProvisionalIncome
	var taxable decimal.Decimal
	switch {
	case provisional.LessThanOrEqual(thresholds.Threshold1):
		taxable = decimal.Zero
	case provisional.LessThanOrEqual(thresholds.Threshold2):
		taxable = decimal.Min(
			provisional.Sub(thresholds.Threshold1).Mul(half),
			total.Mul(half),
		)
	default:
		tierTwo := thresholds.Threshold2.Sub(thresholds.Threshold1).Mul(half)
		taxable = decimal.Min(
			total.Mul(rate85),
			provisional.Sub(thresholds.Threshold2).Mul(rate85).Add(tierTwo),
		)
	}

	breakdown.TaxableAmount = money.RoundCents(taxable)
	breakdown.NontaxableAmount = money.RoundCents(total.Sub(breakdown.TaxableAmount))

	// Apportion both pools by share of gross benefits. The subject's slice is
	// rounded; the partner takes the exact remainder so the pools reconcile.
	subjectShare := subjectGross.Div(total)
	breakdown.SubjectTaxable = money.RoundCents(breakdown.TaxableAmount.Mul(subjectShare))
	breakdown.PartnerTaxable = breakdown.TaxableAmount.Sub(breakdown.SubjectTaxable)
	breakdown.SubjectNontaxable = money.RoundCents(breakdown.NontaxableAmount.Mul(subjectShare))
	breakdown.PartnerNontaxable = breakdown.NontaxableAmount.Sub(breakdown.SubjectNontaxable)

	return breakdown
}
