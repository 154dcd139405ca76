package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlanConfig is the top-level plan document loaded from YAML.
type PlanConfig struct {
	PlanName  string           `yaml:"plan_name" json:"plan_name"`
	Household Household        `yaml:"household" json:"household"`
	Fiscal    FiscalParameters `yaml:"fiscal" json:"fiscal"`
	TaxRules  *TaxRules        `yaml:"tax_rules,omitempty" json:"tax_rules,omitempty"`
}

// FiscalParameters drive one projection: rates, the spending target, which
// account classes participate, withholding, and allocation thresholds.
type FiscalParameters struct {
	BaseYear        int             `yaml:"base_year" json:"base_year"`
	ProjectionYears int             `yaml:"projection_years" json:"projection_years"`
	InflationRate   decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`

	SavingsReturnRate decimal.Decimal `yaml:"savings_return_rate" json:"savings_return_rate"`
	RothReturnRate    decimal.Decimal `yaml:"roth_return_rate" json:"roth_return_rate"`
	K401ReturnRate    decimal.Decimal `yaml:"k401_return_rate" json:"k401_return_rate"`

	// AnnualSpend is the household spending target in base-year dollars,
	// indexed by inflation each projection year.
	AnnualSpend decimal.Decimal `yaml:"annual_spend" json:"annual_spend"`

	UseSavings bool `yaml:"use_savings" json:"use_savings"`
	Use401k    bool `yaml:"use_401k" json:"use_401k"`
	UseRoth    bool `yaml:"use_roth" json:"use_roth"`
	UseRMD     bool `yaml:"use_rmd" json:"use_rmd"`

	K401WithholdingRate decimal.Decimal `yaml:"k401_withholding_rate" json:"k401_withholding_rate"`
	SSWithholdingRate   decimal.Decimal `yaml:"ss_withholding_rate" json:"ss_withholding_rate"`

	// K401WithdrawalCeiling caps any one person's gross 401k availability for
	// a single year when set.
	K401WithdrawalCeiling *decimal.Decimal `yaml:"k401_withdrawal_ceiling,omitempty" json:"k401_withdrawal_ceiling,omitempty"`

	// Immaterial balances are fully drained before weighted allocation: a
	// positive balance below ImmaterialAbsolute or below ImmaterialFraction
	// of total spend-capable funds.
	ImmaterialAbsolute decimal.Decimal `yaml:"immaterial_absolute" json:"immaterial_absolute"`
	ImmaterialFraction decimal.Decimal `yaml:"immaterial_fraction" json:"immaterial_fraction"`

	// MinimumWithdrawal is the smallest proportional allocation worth taking
	// from a generic account.
	MinimumWithdrawal decimal.Decimal `yaml:"minimum_withdrawal" json:"minimum_withdrawal"`
}

// GenerateAssumptions renders the fiscal parameters as report-ready
// assumption lines.
func (fp *FiscalParameters) GenerateAssumptions() []string {
	hundred := decimal.NewFromInt(100)
	return []string{
		fmt.Sprintf("Inflation (spending, benefits, brackets): %.1f%% annually", fp.InflationRate.Mul(hundred).InexactFloat64()),
		fmt.Sprintf("Savings growth: %.1f%% annually", fp.SavingsReturnRate.Mul(hundred).InexactFloat64()),
		fmt.Sprintf("Roth growth: %.1f%% annually", fp.RothReturnRate.Mul(hundred).InexactFloat64()),
		fmt.Sprintf("401k growth: %.1f%% annually", fp.K401ReturnRate.Mul(hundred).InexactFloat64()),
		fmt.Sprintf("401k withholding: %.1f%% of gross distributions", fp.K401WithholdingRate.Mul(hundred).InexactFloat64()),
		fmt.Sprintf("Annual spending target: $%s in %d dollars", fp.AnnualSpend.StringFixed(0), fp.BaseYear),
	}
}

// UnmarshalYAML implements custom YAML unmarshaling for FiscalParameters.
func (fp *FiscalParameters) UnmarshalYAML(value *yaml.Node) error {
	// Temporary struct with a string field for the optional ceiling
	type Alias struct {
		BaseYear              int             `yaml:"base_year"`
		ProjectionYears       int             `yaml:"projection_years"`
		InflationRate         decimal.Decimal `yaml:"inflation_rate"`
		SavingsReturnRate     decimal.Decimal `yaml:"savings_return_rate"`
		RothReturnRate        decimal.Decimal `yaml:"roth_return_rate"`
		K401ReturnRate        decimal.Decimal `yaml:"k401_return_rate"`
		AnnualSpend           decimal.Decimal `yaml:"annual_spend"`
		UseSavings            bool            `yaml:"use_savings"`
		Use401k               bool            `yaml:"use_401k"`
		UseRoth               bool            `yaml:"use_roth"`
		UseRMD                bool            `yaml:"use_rmd"`
		K401WithholdingRate   decimal.Decimal `yaml:"k401_withholding_rate"`
		SSWithholdingRate     decimal.Decimal `yaml:"ss_withholding_rate"`
		K401WithdrawalCeiling *string         `yaml:"k401_withdrawal_ceiling,omitempty"`
		ImmaterialAbsolute    decimal.Decimal `yaml:"immaterial_absolute"`
		ImmaterialFraction    decimal.Decimal `yaml:"immaterial_fraction"`
		MinimumWithdrawal     decimal.Decimal `yaml:"minimum_withdrawal"`
	}

	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}

	fp.BaseYear = aux.BaseYear
	fp.ProjectionYears = aux.ProjectionYears
	fp.InflationRate = aux.InflationRate
	fp.SavingsReturnRate = aux.SavingsReturnRate
	fp.RothReturnRate = aux.RothReturnRate
	fp.K401ReturnRate = aux.K401ReturnRate
	fp.AnnualSpend = aux.AnnualSpend
	fp.UseSavings = aux.UseSavings
	fp.Use401k = aux.Use401k
	fp.UseRoth = aux.UseRoth
	fp.UseRMD = aux.UseRMD
	fp.K401WithholdingRate = aux.K401WithholdingRate
	fp.SSWithholdingRate = aux.SSWithholdingRate
	fp.ImmaterialAbsolute = aux.ImmaterialAbsolute
	fp.ImmaterialFraction = aux.ImmaterialFraction
	fp.MinimumWithdrawal = aux.MinimumWithdrawal

	if aux.K401WithdrawalCeiling != nil {
		val, err := decimal.NewFromString(*aux.K401WithdrawalCeiling)
		if err != nil {
			return err
		}
		fp.K401WithdrawalCeiling = &val
	}

	return nil
}

// TaxRules overrides the built-in federal tax tables and Social Security
// thresholds. Nil sections fall back to the 2025 defaults.
type TaxRules struct {
	FederalTax               *FederalTaxConfig            `yaml:"federal_tax,omitempty" json:"federal_tax,omitempty"`
	SocialSecurityThresholds *SocialSecurityTaxThresholds `yaml:"social_security_thresholds,omitempty" json:"social_security_thresholds,omitempty"`
}

// FederalTaxConfig holds deduction bases and bracket tables per filing status,
// stated in base-year dollars.
type FederalTaxConfig struct {
	StandardDeductionMFJ    decimal.Decimal    `yaml:"standard_deduction_mfj" json:"standard_deduction_mfj"`
	StandardDeductionSingle decimal.Decimal    `yaml:"standard_deduction_single" json:"standard_deduction_single"`
	BracketsMFJ             []TaxBracketConfig `yaml:"brackets_mfj" json:"brackets_mfj"`
	BracketsSingle          []TaxBracketConfig `yaml:"brackets_single" json:"brackets_single"`
}

// TaxBracketConfig is one configured bracket: income up to UpTo taxed at
// Rate. A zero UpTo on the final bracket means open-ended.
type TaxBracketConfig struct {
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
	UpTo decimal.Decimal `yaml:"up_to" json:"up_to"`
}

// SSThresholds is one filing status's provisional-income threshold pair.
type SSThresholds struct {
	Threshold1 decimal.Decimal `yaml:"threshold_1" json:"threshold_1"`
	Threshold2 decimal.Decimal `yaml:"threshold_2" json:"threshold_2"`
}

// SocialSecurityTaxThresholds holds the threshold pairs for both statuses.
type SocialSecurityTaxThresholds struct {
	MarriedFilingJointly SSThresholds `yaml:"married_jointly" json:"married_jointly"`
	Single               SSThresholds `yaml:"single" json:"single"`
}
