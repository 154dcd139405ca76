package output

import (
	"bytes"
	"encoding/csv"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// CSVDetailedExporter provides the full annual projection detail: per-source
// income, the per-account withdrawal split, taxes, and every ledger balance.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(projection *domain.PlanProjection) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	accounts := domain.LedgerAccounts()
	header := []string{
		"Year", "SubjectAge", "PartnerAge", "SubjectAlive", "PartnerAlive", "Retired", "FilingStatus",
		"SubjectSS", "PartnerSS", "Pension", "CashOnHand",
		"TargetSpend", "Ask",
		"SavingsWithdrawn", "RothWithdrawn",
		"K401SubjectGross", "K401SubjectNet", "K401PartnerGross", "K401PartnerNet", "K401CombinedGross", "K401CombinedNet",
		"TotalWithdrawn", "Shortfall",
		"ProvisionalIncome", "SSTaxable", "TaxableIncome", "FederalTax", "EffectiveRate",
		"NetIncome",
	}
	for _, account := range accounts {
		header = append(header, "Balance_"+string(account))
	}
	header = append(header, "NetWorth")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range projection.Years {
		yr := &projection.Years[i]
		row := []string{
			intToString(yr.Year),
			intToString(yr.SubjectAge),
			intToString(yr.PartnerAge),
			boolToString(yr.SubjectAlive),
			boolToString(yr.PartnerAlive),
			boolToString(yr.Retired),
			string(yr.FilingStatus),
			yr.SubjectSSGross.StringFixed(2),
			yr.PartnerSSGross.StringFixed(2),
			yr.PensionIncome.StringFixed(2),
			yr.CashOnHand.StringFixed(2),
			yr.TargetSpend.StringFixed(2),
			yr.Ask.StringFixed(2),
			yr.Plan.Savings.StringFixed(2),
			yr.Plan.RothCombined.StringFixed(2),
			yr.Plan.K401.SubjectGross.StringFixed(2),
			yr.Plan.K401.SubjectNet.StringFixed(2),
			yr.Plan.K401.PartnerGross.StringFixed(2),
			yr.Plan.K401.PartnerNet.StringFixed(2),
			yr.Plan.K401.CombinedGross.StringFixed(2),
			yr.Plan.K401.CombinedNet.StringFixed(2),
			yr.Plan.TotalWithdrawn.StringFixed(2),
			yr.Plan.Shortfall.StringFixed(2),
			yr.SSTax.ProvisionalIncome.StringFixed(2),
			yr.SSTax.TaxableAmount.StringFixed(2),
			yr.Tax.TaxableIncome.StringFixed(2),
			yr.Tax.FederalTax.StringFixed(2),
			yr.Tax.EffectiveRate.StringFixed(4),
			yr.NetIncome.StringFixed(2),
		}
		for _, account := range accounts {
			row = append(row, yr.EndingBalances[account].StringFixed(2))
		}
		row = append(row, yr.NetWorth.StringFixed(2))
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), nil
}
