package domain

import (
	"github.com/shopspring/decimal"

	"github.com/drawplan/withdrawal-planner/pkg/dateutil"
)

// FilingStatus is the federal filing status used for a tax year.
type FilingStatus string

const (
	FilingMarriedJointly FilingStatus = "married_jointly"
	FilingSingle         FilingStatus = "single"
)

// SocialSecurityBenefit describes one person's Social Security income:
// the annual benefit in base-year dollars and the age it begins.
type SocialSecurityBenefit struct {
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartAge     int             `yaml:"start_age" json:"start_age"`
}

// PensionBenefit describes one person's pension income. SurvivorshipPercent
// is the fraction of the benefit a surviving spouse keeps receiving.
type PensionBenefit struct {
	AnnualAmount        decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
	StartAge            int             `yaml:"start_age" json:"start_age"`
	SurvivorshipPercent decimal.Decimal `yaml:"survivorship_percent" json:"survivorship_percent"`
}

// Participant is one member of the household: the plan subject or the partner.
type Participant struct {
	Name           string                `yaml:"name" json:"name"`
	BirthYear      int                   `yaml:"birth_year" json:"birth_year"`
	RetirementAge  int                   `yaml:"retirement_age" json:"retirement_age"`
	LifeSpanAge    int                   `yaml:"life_span_age" json:"life_span_age"`
	K401AccessAge  int                   `yaml:"k401_access_age" json:"k401_access_age"`
	SocialSecurity SocialSecurityBenefit `yaml:"social_security" json:"social_security"`
	Pension        PensionBenefit        `yaml:"pension,omitempty" json:"pension,omitempty"`

	K401Balance            decimal.Decimal `yaml:"k401_balance" json:"k401_balance"`
	RothBalance            decimal.Decimal `yaml:"roth_balance" json:"roth_balance"`
	K401AnnualContribution decimal.Decimal `yaml:"k401_annual_contribution" json:"k401_annual_contribution"`
	RothAnnualContribution decimal.Decimal `yaml:"roth_annual_contribution" json:"roth_annual_contribution"`
}

// AgeInYear returns the age the participant attains during the given year.
func (p *Participant) AgeInYear(year int) int {
	return dateutil.AgeInYear(p.BirthYear, year)
}

// IsAliveInYear reports whether the participant is alive during the given
// year. A participant is alive through the end of the year they attain their
// life-span age.
func (p *Participant) IsAliveInYear(year int) bool {
	return p.AgeInYear(year) <= p.LifeSpanAge
}

// IsRetiredInYear reports whether the participant has reached retirement age.
func (p *Participant) IsRetiredInYear(year int) bool {
	return dateutil.HasReachedAge(p.BirthYear, p.RetirementAge, year)
}

// Has401kAccessInYear reports whether the participant may draw on their 401k.
func (p *Participant) Has401kAccessInYear(year int) bool {
	return dateutil.HasReachedAge(p.BirthYear, p.K401AccessAge, year)
}

// Household groups the participants and the jointly held savings account.
type Household struct {
	Subject Participant  `yaml:"subject" json:"subject"`
	Partner *Participant `yaml:"partner,omitempty" json:"partner,omitempty"`

	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`

	SavingsBalance            decimal.Decimal `yaml:"savings_balance" json:"savings_balance"`
	SavingsAnnualContribution decimal.Decimal `yaml:"savings_annual_contribution" json:"savings_annual_contribution"`
}

// FilingStatusInYear resolves the filing status for one tax year. A household
// files jointly only while both spouses are alive; it drops to single when
// widowed or when no partner is configured.
func (h *Household) FilingStatusInYear(year int) FilingStatus {
	if h.Partner == nil {
		return FilingSingle
	}
	if h.FilingStatus == FilingSingle {
		return FilingSingle
	}
	if h.Subject.IsAliveInYear(year) && h.Partner.IsAliveInYear(year) {
		return FilingMarriedJointly
	}
	return FilingSingle
}

// AnyAliveInYear reports whether at least one participant is alive.
func (h *Household) AnyAliveInYear(year int) bool {
	if h.Subject.IsAliveInYear(year) {
		return true
	}
	return h.Partner != nil && h.Partner.IsAliveInYear(year)
}
