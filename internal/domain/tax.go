package domain

import (
	"github.com/shopspring/decimal"
)

// SSTaxBreakdown is the tiered Social Security taxation result for one year.
// Per-person amounts apportion the household totals by each person's share of
// gross benefits.
type SSTaxBreakdown struct {
	FilingStatus FilingStatus `json:"filing_status"`

	SubjectGross decimal.Decimal `json:"subject_gross"`
	PartnerGross decimal.Decimal `json:"partner_gross"`
	TotalGross   decimal.Decimal `json:"total_gross"`

	OtherTaxableIncome decimal.Decimal `json:"other_taxable_income"`
	ProvisionalIncome  decimal.Decimal `json:"provisional_income"`
	Threshold1         decimal.Decimal `json:"threshold_1"`
	Threshold2         decimal.Decimal `json:"threshold_2"`

	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	NontaxableAmount decimal.Decimal `json:"nontaxable_amount"`

	SubjectTaxable    decimal.Decimal `json:"subject_taxable"`
	PartnerTaxable    decimal.Decimal `json:"partner_taxable"`
	SubjectNontaxable decimal.Decimal `json:"subject_nontaxable"`
	PartnerNontaxable decimal.Decimal `json:"partner_nontaxable"`
}

// TaxResult is the federal income tax outcome for one tax year.
type TaxResult struct {
	Year         int          `json:"year"`
	FilingStatus FilingStatus `json:"filing_status"`

	GrossTaxableIncome decimal.Decimal `json:"gross_taxable_income"`
	AGI                decimal.Decimal `json:"agi"`
	StandardDeduction  decimal.Decimal `json:"standard_deduction"`
	TaxableIncome      decimal.Decimal `json:"taxable_income"`
	FederalTax         decimal.Decimal `json:"federal_tax"`

	// EffectiveRate is federal tax over AGI, zero when AGI is zero.
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}
