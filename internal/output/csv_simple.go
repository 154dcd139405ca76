package output

import (
	"bytes"
	"encoding/csv"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per year).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(projection *domain.PlanProjection) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "SubjectAge", "PartnerAge", "Retired", "FilingStatus", "SSGross", "Pension", "CashOnHand", "TargetSpend", "TotalWithdrawn", "Shortfall", "FederalTax", "NetIncome", "NetWorth"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range projection.Years {
		yr := &projection.Years[i]
		row := []string{
			intToString(yr.Year),
			intToString(yr.SubjectAge),
			intToString(yr.PartnerAge),
			boolToString(yr.Retired),
			string(yr.FilingStatus),
			yr.SubjectSSGross.Add(yr.PartnerSSGross).StringFixed(2),
			yr.PensionIncome.StringFixed(2),
			yr.CashOnHand.StringFixed(2),
			yr.TargetSpend.StringFixed(2),
			yr.Plan.TotalWithdrawn.StringFixed(2),
			yr.Plan.Shortfall.StringFixed(2),
			yr.Tax.FederalTax.StringFixed(2),
			yr.NetIncome.StringFixed(2),
			yr.NetWorth.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), nil
}
