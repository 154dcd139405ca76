package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	// Minimal, well-formed YAML (spaces only)
	testConfig := `plan_name: "Two Person Plan"
household:
  filing_status: married_jointly
  savings_balance: 50000
  subject:
    name: "Alex"
    birth_year: 1962
    k401_balance: 400000
  partner:
    name: "Morgan"
    birth_year: 1964
    roth_balance: 25000
fiscal:
  base_year: 2025
  projection_years: 20
  annual_spend: 80000
  use_savings: true
  use_401k: true
  k401_withholding_rate: 0.20
`

	tmpfile, err := os.CreateTemp("", "test_plan_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(testConfig))
	require.NoError(t, err)
	tmpfile.Close()

	parser := NewInputParser()
	cfg, err := parser.LoadFromFile(tmpfile.Name())

	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "Two Person Plan", cfg.PlanName)
	assert.Equal(t, "Alex", cfg.Household.Subject.Name)
	require.NotNil(t, cfg.Household.Partner)
	assert.Equal(t, "Morgan", cfg.Household.Partner.Name)
	assert.Equal(t, domain.FilingMarriedJointly, cfg.Household.FilingStatus)
	assert.True(t, cfg.Household.SavingsBalance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, cfg.Fiscal.AnnualSpend.Equal(decimal.NewFromInt(80000)))
	assert.True(t, cfg.Fiscal.UseSavings)
	assert.True(t, cfg.Fiscal.Use401k)
	assert.False(t, cfg.Fiscal.UseRoth)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()
	cfg, err := parser.LoadFromFile("nonexistent_plan.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	// Tab indentation is not valid YAML
	testConfig := "plan_name: \"Broken\"\nhousehold:\n\tsubject:\n\t\tname: \"Alex\"\n"

	tmpfile, err := os.CreateTemp("", "test_plan_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write([]byte(testConfig))
	require.NoError(t, err)
	tmpfile.Close()

	parser := NewInputParser()
	cfg, err := parser.LoadFromFile(tmpfile.Name())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromBytes_AppliesDefaults(t *testing.T) {
	testConfig := `plan_name: "Minimal Plan"
household:
  subject:
    name: "Alex"
    birth_year: 1962
fiscal:
  annual_spend: 40000
`

	parser := NewInputParser()
	cfg, err := parser.LoadFromBytes([]byte(testConfig))

	require.NoError(t, err)
	assert.Equal(t, 2025, cfg.Fiscal.BaseYear)
	assert.Equal(t, 25, cfg.Fiscal.ProjectionYears)
	assert.Equal(t, 65, cfg.Household.Subject.RetirementAge)
	assert.Equal(t, 95, cfg.Household.Subject.LifeSpanAge)
	assert.Equal(t, 60, cfg.Household.Subject.K401AccessAge)
	assert.Equal(t, domain.FilingSingle, cfg.Household.FilingStatus)
	assert.True(t, cfg.Fiscal.ImmaterialAbsolute.Equal(decimal.NewFromInt(200)))
	assert.True(t, cfg.Fiscal.ImmaterialFraction.Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, cfg.Fiscal.MinimumWithdrawal.Equal(decimal.NewFromInt(200)))
	// No benefit amount configured, so no start age is filled in
	assert.Equal(t, 0, cfg.Household.Subject.SocialSecurity.StartAge)
}

func TestLoadFromBytes_PartnerDefaultsFilingJoint(t *testing.T) {
	testConfig := `plan_name: "Couple Plan"
household:
  subject:
    name: "Alex"
    birth_year: 1962
  partner:
    name: "Morgan"
    birth_year: 1964
    social_security:
      annual_amount: 24000
fiscal:
  annual_spend: 60000
`

	parser := NewInputParser()
	cfg, err := parser.LoadFromBytes([]byte(testConfig))

	require.NoError(t, err)
	assert.Equal(t, domain.FilingMarriedJointly, cfg.Household.FilingStatus)
	// A positive benefit without a start age gets the earliest claiming age
	assert.Equal(t, 62, cfg.Household.Partner.SocialSecurity.StartAge)
}

func TestLoadFromBytes_WithdrawalCeiling(t *testing.T) {
	testConfig := `plan_name: "Capped Plan"
household:
  subject:
    name: "Alex"
    birth_year: 1962
fiscal:
  annual_spend: 40000
  use_401k: true
  k401_withholding_rate: 0.20
  k401_withdrawal_ceiling: "60000"
`

	parser := NewInputParser()
	cfg, err := parser.LoadFromBytes([]byte(testConfig))

	require.NoError(t, err)
	require.NotNil(t, cfg.Fiscal.K401WithdrawalCeiling)
	assert.True(t, cfg.Fiscal.K401WithdrawalCeiling.Equal(decimal.NewFromInt(60000)))
}

func TestValidateConfiguration_Success(t *testing.T) {
	parser := NewInputParser()
	cfg := createValidPlanConfig()

	err := parser.ValidateConfiguration(cfg)
	assert.NoError(t, err)
}

func TestValidateConfiguration_MissingPlanName(t *testing.T) {
	parser := NewInputParser()
	cfg := createValidPlanConfig()
	cfg.PlanName = ""

	err := parser.ValidateConfiguration(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "plan name is required")
}

func TestValidateConfiguration_JointRequiresPartner(t *testing.T) {
	parser := NewInputParser()
	cfg := createValidPlanConfig()
	cfg.Household.Partner = nil

	err := parser.ValidateConfiguration(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires a partner")
}

func TestValidateConfiguration_UnknownFilingStatus(t *testing.T) {
	parser := NewInputParser()
	cfg := createValidPlanConfig()
	cfg.Household.FilingStatus = "head_of_household"

	err := parser.ValidateConfiguration(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "filing status must be")
}

func TestValidateConfiguration_NegativeSavings(t *testing.T) {
	parser := NewInputParser()
	cfg := createValidPlanConfig()
	cfg.Household.SavingsBalance = decimal.NewFromInt(-100)

	err := parser.ValidateConfiguration(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "savings balance cannot be negative")
}

func TestValidateParticipant_Success(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)

	err := parser.validateParticipant("subject", &p, 2025)
	assert.NoError(t, err)
}

func TestValidateParticipant_MissingName(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.Name = ""

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestValidateParticipant_BirthYearOutOfRange(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1850) // Too early

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "birth year must be between 1900 and the base year")

	p.BirthYear = 2030 // After the base year
	err = parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "birth year must be between 1900 and the base year")
}

func TestValidateParticipant_LifeSpanBelowCurrentAge(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1950)
	p.LifeSpanAge = 70 // Already 75 in the base year

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "life span age 70 is below the current age 75")
}

func TestValidateParticipant_RetirementAgeOutOfRange(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.RetirementAge = 20 // Too young

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retirement age must be between 30 and 100")

	p.RetirementAge = 110 // Too old
	err = parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retirement age must be between 30 and 100")
}

func TestValidateParticipant_AccessAgeOutOfRange(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.K401AccessAge = 45

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401k access age must be between 50 and 75")
}

func TestValidateParticipant_NegativeBalances(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.K401Balance = decimal.NewFromInt(-5000)

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401k balance cannot be negative")

	p = createValidParticipant("Alex", 1962)
	p.RothAnnualContribution = decimal.NewFromInt(-100)
	err = parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Roth annual contribution cannot be negative")
}

func TestValidateParticipant_SSStartAgeOutOfRange(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.SocialSecurity.AnnualAmount = decimal.NewFromInt(30000)
	p.SocialSecurity.StartAge = 60 // Too young

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "social security start age must be between 62 and 70")

	p.SocialSecurity.StartAge = 75 // Too old
	err = parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "social security start age must be between 62 and 70")

	// No benefit means the start age is not checked
	p.SocialSecurity.AnnualAmount = decimal.Zero
	err = parser.validateParticipant("subject", &p, 2025)
	assert.NoError(t, err)
}

func TestValidateParticipant_SurvivorshipOutOfRange(t *testing.T) {
	parser := NewInputParser()
	p := createValidParticipant("Alex", 1962)
	p.Pension.SurvivorshipPercent = decimal.NewFromFloat(1.5)

	err := parser.validateParticipant("subject", &p, 2025)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "survivorship percent must be between 0 and 1")
}

func TestValidateFiscal_Success(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()

	err := parser.validateFiscal(&fiscal)
	assert.NoError(t, err)
}

func TestValidateFiscal_ExtremeDeflation(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.InflationRate = decimal.NewFromFloat(-0.15) // -15%

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inflation rate cannot be less than -10%")
}

func TestValidateFiscal_ExtremeInflation(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.InflationRate = decimal.NewFromFloat(0.25) // 25%

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inflation rate cannot exceed 20%")
}

func TestValidateFiscal_InvalidProjectionYears(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.ProjectionYears = 0

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "projection years must be between 1 and 80")

	fiscal.ProjectionYears = 90
	err = parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "projection years must be between 1 and 80")
}

func TestValidateFiscal_ExtremeReturnRate(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.K401ReturnRate = decimal.NewFromFloat(-1.5) // -150%

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401k return rate cannot be less than -100%")
}

func TestValidateFiscal_WithholdingOutOfRange(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.K401WithholdingRate = decimal.NewFromInt(1) // 100% leaves no net

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401k withholding rate must be at least 0 and below 1")

	fiscal = createValidFiscal()
	fiscal.SSWithholdingRate = decimal.NewFromFloat(-0.05)
	err = parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "social security withholding rate must be at least 0 and below 1")
}

func TestValidateFiscal_NegativeSpend(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.AnnualSpend = decimal.NewFromInt(-1000)

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "annual spend cannot be negative")
}

func TestValidateFiscal_NonPositiveCeiling(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	ceiling := decimal.Zero
	fiscal.K401WithdrawalCeiling = &ceiling

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401k withdrawal ceiling must be positive")
}

func TestValidateFiscal_ImmaterialFractionOutOfRange(t *testing.T) {
	parser := NewInputParser()
	fiscal := createValidFiscal()
	fiscal.ImmaterialFraction = decimal.NewFromInt(1)

	err := parser.validateFiscal(&fiscal)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "immaterial fraction must be at least 0 and below 1")
}

func TestValidateTaxRules_BracketRateOutOfRange(t *testing.T) {
	parser := NewInputParser()
	rules := &domain.TaxRules{
		FederalTax: &domain.FederalTaxConfig{
			BracketsSingle: []domain.TaxBracketConfig{
				{Rate: decimal.NewFromFloat(1.1), UpTo: decimal.NewFromInt(50000)},
			},
		},
	}

	err := parser.validateTaxRules(rules)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate must be at least 0 and below 1")
}

func TestValidateTaxRules_BracketBoundsNotIncreasing(t *testing.T) {
	parser := NewInputParser()
	rules := &domain.TaxRules{
		FederalTax: &domain.FederalTaxConfig{
			BracketsMFJ: []domain.TaxBracketConfig{
				{Rate: decimal.NewFromFloat(0.10), UpTo: decimal.NewFromInt(50000)},
				{Rate: decimal.NewFromFloat(0.20), UpTo: decimal.NewFromInt(40000)},
			},
		},
	}

	err := parser.validateTaxRules(rules)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bounds must be strictly increasing")
}

func TestValidateTaxRules_OpenEndedBracketNotLast(t *testing.T) {
	parser := NewInputParser()
	rules := &domain.TaxRules{
		FederalTax: &domain.FederalTaxConfig{
			BracketsMFJ: []domain.TaxBracketConfig{
				{Rate: decimal.NewFromFloat(0.10), UpTo: decimal.Zero},
				{Rate: decimal.NewFromFloat(0.20), UpTo: decimal.NewFromInt(90000)},
			},
		},
	}

	err := parser.validateTaxRules(rules)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only the final bracket may be open-ended")
}

func TestValidateTaxRules_ThresholdOrder(t *testing.T) {
	parser := NewInputParser()
	rules := &domain.TaxRules{
		SocialSecurityThresholds: &domain.SocialSecurityTaxThresholds{
			Single: domain.SSThresholds{
				Threshold1: decimal.NewFromInt(34000),
				Threshold2: decimal.NewFromInt(25000),
			},
		},
	}

	err := parser.validateTaxRules(rules)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "threshold 2 cannot be below threshold 1")
}

func TestCreateExampleConfiguration(t *testing.T) {
	parser := NewInputParser()
	cfg := parser.CreateExampleConfiguration()

	assert.NotNil(t, cfg)
	assert.Equal(t, "Alex", cfg.Household.Subject.Name)
	require.NotNil(t, cfg.Household.Partner)
	assert.Equal(t, "Morgan", cfg.Household.Partner.Name)
	assert.Equal(t, domain.FilingMarriedJointly, cfg.Household.FilingStatus)

	// The example must pass its own validation
	err := parser.ValidateConfiguration(cfg)
	assert.NoError(t, err)
}

func TestExampleConfigurationYAML_RoundTrips(t *testing.T) {
	parser := NewInputParser()
	cfg, err := parser.LoadFromBytes([]byte(parser.ExampleConfigurationYAML()))

	require.NoError(t, err)

	example := parser.CreateExampleConfiguration()
	assert.Equal(t, example.PlanName, cfg.PlanName)
	assert.Equal(t, example.Household.Subject.Name, cfg.Household.Subject.Name)
	assert.Equal(t, example.Household.Subject.BirthYear, cfg.Household.Subject.BirthYear)
	require.NotNil(t, cfg.Household.Partner)
	assert.Equal(t, example.Household.Partner.Name, cfg.Household.Partner.Name)
	assert.True(t, cfg.Household.SavingsBalance.Equal(example.Household.SavingsBalance))
	assert.Equal(t, example.Fiscal.BaseYear, cfg.Fiscal.BaseYear)
	assert.Equal(t, example.Fiscal.ProjectionYears, cfg.Fiscal.ProjectionYears)
	assert.True(t, cfg.Fiscal.AnnualSpend.Equal(example.Fiscal.AnnualSpend))
	assert.True(t, cfg.Fiscal.UseRMD)
}

// Helper functions

func createValidParticipant(name string, birthYear int) domain.Participant {
	return domain.Participant{
		Name:          name,
		BirthYear:     birthYear,
		RetirementAge: 65,
		LifeSpanAge:   95,
		K401AccessAge: 60,
		K401Balance:   decimal.NewFromInt(300000),
		RothBalance:   decimal.NewFromInt(50000),
	}
}

func createValidFiscal() domain.FiscalParameters {
	return domain.FiscalParameters{
		BaseYear:            2025,
		ProjectionYears:     30,
		InflationRate:       decimal.NewFromFloat(0.025),
		SavingsReturnRate:   decimal.NewFromFloat(0.02),
		RothReturnRate:      decimal.NewFromFloat(0.05),
		K401ReturnRate:      decimal.NewFromFloat(0.05),
		AnnualSpend:         decimal.NewFromInt(80000),
		UseSavings:          true,
		Use401k:             true,
		UseRoth:             true,
		UseRMD:              true,
		K401WithholdingRate: decimal.NewFromFloat(0.20),
		SSWithholdingRate:   decimal.NewFromFloat(0.07),
		ImmaterialAbsolute:  decimal.NewFromInt(200),
		ImmaterialFraction:  decimal.NewFromFloat(0.01),
		MinimumWithdrawal:   decimal.NewFromInt(200),
	}
}

func createValidPlanConfig() *domain.PlanConfig {
	partner := createValidParticipant("Morgan", 1964)

	return &domain.PlanConfig{
		PlanName: "Valid Plan",
		Household: domain.Household{
			Subject:        createValidParticipant("Alex", 1962),
			Partner:        &partner,
			FilingStatus:   domain.FilingMarriedJointly,
			SavingsBalance: decimal.NewFromInt(100000),
		},
		Fiscal: createValidFiscal(),
	}
}
