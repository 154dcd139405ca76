package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/drawplan/withdrawal-planner/internal/domain"
	"github.com/drawplan/withdrawal-planner/pkg/dateutil"
)

// Defaults applied to fields the plan file leaves unset.
const (
	defaultBaseYear        = 2025
	defaultProjectionYears = 25
	defaultRetirementAge   = 65
	defaultLifeSpanAge     = 95
	defaultK401AccessAge   = 60
	defaultSSStartAge      = 62
	defaultPensionStartAge = 65
)

var (
	defaultImmaterialAbsolute = decimal.NewFromInt(200)
	defaultImmaterialFraction = decimal.NewFromFloat(0.01)
	defaultMinimumWithdrawal  = decimal.NewFromInt(200)
)

// InputParser handles parsing of plan configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a plan configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.PlanConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses a plan configuration, applies defaults, and validates
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.PlanConfig, error) {
	var cfg domain.PlanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.applyDefaults(&cfg)

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with the planner defaults so a minimal
// plan file still runs.
func (ip *InputParser) applyDefaults(cfg *domain.PlanConfig) {
	fiscal := &cfg.Fiscal
	if fiscal.BaseYear == 0 {
		fiscal.BaseYear = defaultBaseYear
	}
	if fiscal.ProjectionYears == 0 {
		fiscal.ProjectionYears = defaultProjectionYears
	}
	if !fiscal.ImmaterialAbsolute.IsPositive() {
		fiscal.ImmaterialAbsolute = defaultImmaterialAbsolute
	}
	if !fiscal.ImmaterialFraction.IsPositive() {
		fiscal.ImmaterialFraction = defaultImmaterialFraction
	}
	if !fiscal.MinimumWithdrawal.IsPositive() {
		fiscal.MinimumWithdrawal = defaultMinimumWithdrawal
	}

	applyParticipantDefaults(&cfg.Household.Subject)
	if cfg.Household.Partner != nil {
		applyParticipantDefaults(cfg.Household.Partner)
	}

	if cfg.Household.FilingStatus == "" {
		if cfg.Household.Partner != nil {
			cfg.Household.FilingStatus = domain.FilingMarriedJointly
		} else {
			cfg.Household.FilingStatus = domain.FilingSingle
		}
	}
}

func applyParticipantDefaults(p *domain.Participant) {
	if p.RetirementAge == 0 {
		p.RetirementAge = defaultRetirementAge
	}
	if p.LifeSpanAge == 0 {
		p.LifeSpanAge = defaultLifeSpanAge
	}
	if p.K401AccessAge == 0 {
		p.K401AccessAge = defaultK401AccessAge
	}
	if p.SocialSecurity.AnnualAmount.IsPositive() && p.SocialSecurity.StartAge == 0 {
		p.SocialSecurity.StartAge = defaultSSStartAge
	}
	if p.Pension.AnnualAmount.IsPositive() && p.Pension.StartAge == 0 {
		p.Pension.StartAge = defaultPensionStartAge
	}
}

// ValidateConfiguration validates the loaded plan configuration
func (ip *InputParser) ValidateConfiguration(cfg *domain.PlanConfig) error {
	if cfg.PlanName == "" {
		return fmt.Errorf("plan name is required")
	}

	if err := ip.validateHousehold(&cfg.Household, cfg.Fiscal.BaseYear); err != nil {
		return fmt.Errorf("household validation failed: %w", err)
	}
	if err := ip.validateFiscal(&cfg.Fiscal); err != nil {
		return fmt.Errorf("fiscal validation failed: %w", err)
	}
	if cfg.TaxRules != nil {
		if err := ip.validateTaxRules(cfg.TaxRules); err != nil {
			return fmt.Errorf("tax rules validation failed: %w", err)
		}
	}

	return nil
}

// validateHousehold validates the participants and the shared accounts
func (ip *InputParser) validateHousehold(h *domain.Household, baseYear int) error {
	if err := ip.validateParticipant("subject", &h.Subject, baseYear); err != nil {
		return err
	}
	if h.Partner != nil {
		if err := ip.validateParticipant("partner", h.Partner, baseYear); err != nil {
			return err
		}
	}

	switch h.FilingStatus {
	case domain.FilingMarriedJointly:
		if h.Partner == nil {
			return fmt.Errorf("filing status married_jointly requires a partner")
		}
	case domain.FilingSingle:
	default:
		return fmt.Errorf("filing status must be married_jointly or single, got %q", h.FilingStatus)
	}

	if h.SavingsBalance.IsNegative() {
		return fmt.Errorf("savings balance cannot be negative")
	}
	if h.SavingsAnnualContribution.IsNegative() {
		return fmt.Errorf("savings annual contribution cannot be negative")
	}

	return nil
}

// validateParticipant validates a single participant's data
func (ip *InputParser) validateParticipant(name string, p *domain.Participant, baseYear int) error {
	if p.Name == "" {
		return fmt.Errorf("%s: name is required", name)
	}
	if p.BirthYear < 1900 || p.BirthYear >= baseYear {
		return fmt.Errorf("%s: birth year must be between 1900 and the base year", name)
	}
	if age := dateutil.AgeInYear(p.BirthYear, baseYear); p.LifeSpanAge < age {
		return fmt.Errorf("%s: life span age %d is below the current age %d", name, p.LifeSpanAge, age)
	}
	if p.RetirementAge < 30 || p.RetirementAge > 100 {
		return fmt.Errorf("%s: retirement age must be between 30 and 100", name)
	}
	if p.K401AccessAge < 50 || p.K401AccessAge > 75 {
		return fmt.Errorf("%s: 401k access age must be between 50 and 75", name)
	}

	if p.K401Balance.IsNegative() {
		return fmt.Errorf("%s: 401k balance cannot be negative", name)
	}
	if p.RothBalance.IsNegative() {
		return fmt.Errorf("%s: Roth balance cannot be negative", name)
	}
	if p.K401AnnualContribution.IsNegative() {
		return fmt.Errorf("%s: 401k annual contribution cannot be negative", name)
	}
	if p.RothAnnualContribution.IsNegative() {
		return fmt.Errorf("%s: Roth annual contribution cannot be negative", name)
	}

	if p.SocialSecurity.AnnualAmount.IsNegative() {
		return fmt.Errorf("%s: social security annual amount cannot be negative", name)
	}
	if p.SocialSecurity.AnnualAmount.IsPositive() {
		if p.SocialSecurity.StartAge < 62 || p.SocialSecurity.StartAge > 70 {
			return fmt.Errorf("%s: social security start age must be between 62 and 70", name)
		}
	}

	if p.Pension.AnnualAmount.IsNegative() {
		return fmt.Errorf("%s: pension annual amount cannot be negative", name)
	}
	if p.Pension.AnnualAmount.IsPositive() {
		if p.Pension.StartAge < 40 || p.Pension.StartAge > 100 {
			return fmt.Errorf("%s: pension start age must be between 40 and 100", name)
		}
	}
	if p.Pension.SurvivorshipPercent.IsNegative() || p.Pension.SurvivorshipPercent.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s: pension survivorship percent must be between 0 and 1", name)
	}

	return nil
}

// validateFiscal validates the projection parameters
func (ip *InputParser) validateFiscal(f *domain.FiscalParameters) error {
	if f.BaseYear < 1900 {
		return fmt.Errorf("base year must be 1900 or later")
	}
	if f.ProjectionYears <= 0 || f.ProjectionYears > 80 {
		return fmt.Errorf("projection years must be between 1 and 80")
	}
	if f.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) {
		return fmt.Errorf("inflation rate cannot be less than -10%% (extreme deflation)")
	}
	if f.InflationRate.GreaterThan(decimal.NewFromFloat(0.20)) {
		return fmt.Errorf("inflation rate cannot exceed 20%%")
	}

	negativeOne := decimal.NewFromInt(-1)
	if f.SavingsReturnRate.LessThan(negativeOne) {
		return fmt.Errorf("savings return rate cannot be less than -100%%")
	}
	if f.RothReturnRate.LessThan(negativeOne) {
		return fmt.Errorf("roth return rate cannot be less than -100%%")
	}
	if f.K401ReturnRate.LessThan(negativeOne) {
		return fmt.Errorf("401k return rate cannot be less than -100%%")
	}

	one := decimal.NewFromInt(1)
	if f.K401WithholdingRate.IsNegative() || f.K401WithholdingRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("401k withholding rate must be at least 0 and below 1")
	}
	if f.SSWithholdingRate.IsNegative() || f.SSWithholdingRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("social security withholding rate must be at least 0 and below 1")
	}

	if f.AnnualSpend.IsNegative() {
		return fmt.Errorf("annual spend cannot be negative")
	}
	if f.K401WithdrawalCeiling != nil && !f.K401WithdrawalCeiling.IsPositive() {
		return fmt.Errorf("401k withdrawal ceiling must be positive when set")
	}
	if f.ImmaterialFraction.IsNegative() || f.ImmaterialFraction.GreaterThanOrEqual(one) {
		return fmt.Errorf("immaterial fraction must be at least 0 and below 1")
	}

	return nil
}

// validateTaxRules validates configured tax table overrides
func (ip *InputParser) validateTaxRules(rules *domain.TaxRules) error {
	if fed := rules.FederalTax; fed != nil {
		if fed.StandardDeductionMFJ.IsNegative() || fed.StandardDeductionSingle.IsNegative() {
			return fmt.Errorf("standard deductions cannot be negative")
		}
		if err := validateBrackets("married_jointly", fed.BracketsMFJ); err != nil {
			return err
		}
		if err := validateBrackets("single", fed.BracketsSingle); err != nil {
			return err
		}
	}

	if ss := rules.SocialSecurityThresholds; ss != nil {
		if err := validateThresholds("married_jointly", ss.MarriedFilingJointly); err != nil {
			return err
		}
		if err := validateThresholds("single", ss.Single); err != nil {
			return err
		}
	}

	return nil
}

func validateBrackets(status string, brackets []domain.TaxBracketConfig) error {
	previous := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s bracket %d: rate must be at least 0 and below 1", status, i)
		}
		if b.UpTo.IsZero() {
			// A zero bound marks the open-ended final bracket.
			if i != len(brackets)-1 {
				return fmt.Errorf("%s bracket %d: only the final bracket may be open-ended", status, i)
			}
			continue
		}
		if b.UpTo.LessThanOrEqual(previous) {
			return fmt.Errorf("%s bracket %d: bounds must be strictly increasing", status, i)
		}
		previous = b.UpTo
	}
	return nil
}

func validateThresholds(status string, thresholds domain.SSThresholds) error {
	if thresholds.Threshold1.IsNegative() || thresholds.Threshold2.IsNegative() {
		return fmt.Errorf("%s social security thresholds cannot be negative", status)
	}
	if thresholds.Threshold2.LessThan(thresholds.Threshold1) {
		return fmt.Errorf("%s social security threshold 2 cannot be below threshold 1", status)
	}
	return nil
}

// CreateExampleConfiguration creates a complete runnable example plan
func (ip *InputParser) CreateExampleConfiguration() *domain.PlanConfig {
	return &domain.PlanConfig{
		PlanName: "Example Retirement Drawdown",
		Household: domain.Household{
			Subject: domain.Participant{
				Name:          "Alex",
				BirthYear:     1962,
				RetirementAge: 65,
				LifeSpanAge:   92,
				K401AccessAge: 60,
				SocialSecurity: domain.SocialSecurityBenefit{
					AnnualAmount: decimal.NewFromInt(32000),
					StartAge:     67,
				},
				Pension: domain.PensionBenefit{
					AnnualAmount:        decimal.NewFromInt(18000),
					StartAge:            65,
					SurvivorshipPercent: decimal.NewFromFloat(0.5),
				},
				K401Balance:            decimal.NewFromInt(600000),
				RothBalance:            decimal.NewFromInt(80000),
				K401AnnualContribution: decimal.NewFromInt(20000),
				RothAnnualContribution: decimal.NewFromInt(7000),
			},
			Partner: &domain.Participant{
				Name:          "Morgan",
				BirthYear:     1964,
				RetirementAge: 64,
				LifeSpanAge:   90,
				K401AccessAge: 60,
				SocialSecurity: domain.SocialSecurityBenefit{
					AnnualAmount: decimal.NewFromInt(24000),
					StartAge:     65,
				},
				K401Balance:            decimal.NewFromInt(350000),
				RothBalance:            decimal.NewFromInt(60000),
				K401AnnualContribution: decimal.NewFromInt(12000),
				RothAnnualContribution: decimal.NewFromInt(7000),
			},
			FilingStatus:              domain.FilingMarriedJointly,
			SavingsBalance:            decimal.NewFromInt(150000),
			SavingsAnnualContribution: decimal.NewFromInt(12000),
		},
		Fiscal: domain.FiscalParameters{
			BaseYear:            2025,
			ProjectionYears:     30,
			InflationRate:       decimal.NewFromFloat(0.025),
			SavingsReturnRate:   decimal.NewFromFloat(0.02),
			RothReturnRate:      decimal.NewFromFloat(0.05),
			K401ReturnRate:      decimal.NewFromFloat(0.05),
			AnnualSpend:         decimal.NewFromInt(90000),
			UseSavings:          true,
			Use401k:             true,
			UseRoth:             true,
			UseRMD:              true,
			K401WithholdingRate: decimal.NewFromFloat(0.20),
			SSWithholdingRate:   decimal.NewFromFloat(0.07),
			ImmaterialAbsolute:  defaultImmaterialAbsolute,
			ImmaterialFraction:  defaultImmaterialFraction,
			MinimumWithdrawal:   defaultMinimumWithdrawal,
		},
	}
}

// ExampleConfigurationYAML returns the example plan as a commented YAML
// document, suitable for writing to disk as a starting point.
func (ip *InputParser) ExampleConfigurationYAML() string {
	return `# Household drawdown plan.
plan_name: "Example Retirement Drawdown"

household:
  filing_status: married_jointly
  savings_balance: 150000
  savings_annual_contribution: 12000

  subject:
    name: "Alex"
    birth_year: 1962
    retirement_age: 65
    life_span_age: 92
    k401_access_age: 60
    social_security:
      annual_amount: 32000
      start_age: 67
    pension:
      annual_amount: 18000
      start_age: 65
      survivorship_percent: 0.5
    k401_balance: 600000
    roth_balance: 80000
    k401_annual_contribution: 20000
    roth_annual_contribution: 7000

  # The partner block is optional; leave it out for a single-person plan.
  partner:
    name: "Morgan"
    birth_year: 1964
    retirement_age: 64
    life_span_age: 90
    k401_access_age: 60
    social_security:
      annual_amount: 24000
      start_age: 65
    k401_balance: 350000
    roth_balance: 60000
    k401_annual_contribution: 12000
    roth_annual_contribution: 7000

fiscal:
  base_year: 2025
  projection_years: 30
  inflation_rate: 0.025
  savings_return_rate: 0.02
  roth_return_rate: 0.05
  k401_return_rate: 0.05
  # Target spending in base-year dollars, indexed by inflation.
  annual_spend: 90000
  use_savings: true
  use_401k: true
  use_roth: true
  use_rmd: true
  k401_withholding_rate: 0.20
  ss_withholding_rate: 0.07
  # Cap any one person's gross 401k draw for a single year (quoted amount):
  # k401_withdrawal_ceiling: "60000"
  immaterial_absolute: 200
  immaterial_fraction: 0.01
  minimum_withdrawal: 200

# Optional overrides for the built-in 2025 tax tables:
# tax_rules:
#   social_security_thresholds:
#     married_jointly:
#       threshold_1: 32000
#       threshold_2: 44000
#     single:
#       threshold_1: 25000
#       threshold_2: 34000
`
}
