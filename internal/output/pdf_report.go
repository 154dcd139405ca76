package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

const (
	pdfPageWidth    = 210.0
	pdfMarginLeft   = 15.0
	pdfMarginRight  = 15.0
	pdfMarginTop    = 15.0
	pdfMarginBottom = 20.0
	pdfContentWidth = pdfPageWidth - pdfMarginLeft - pdfMarginRight
)

// PDFFormatter renders an A4 report: title page with assumptions and plan
// health, then the year-by-year table.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(projection *domain.PlanProjection) ([]byte, error) {
	r := &pdfReport{
		doc:        fpdf.New("P", "mm", "A4", ""),
		projection: projection,
	}
	r.doc.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	r.doc.SetAutoPageBreak(true, pdfMarginBottom)

	r.addTitlePage()
	r.addYearTable()

	var buf bytes.Buffer
	if err := r.doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type pdfReport struct {
	doc        *fpdf.Fpdf
	projection *domain.PlanProjection
}

func (r *pdfReport) addTitlePage() {
	r.doc.AddPage()

	r.doc.SetFont("Arial", "B", 24)
	r.doc.SetTextColor(0, 51, 102)
	r.doc.Ln(30)
	r.doc.CellFormat(pdfContentWidth, 14, "Retirement Drawdown Projection", "", 1, "C", false, 0, "")

	r.doc.SetFont("Arial", "", 14)
	r.doc.SetTextColor(80, 80, 80)
	r.doc.Ln(6)
	r.doc.CellFormat(pdfContentWidth, 10, r.projection.PlanName, "", 1, "C", false, 0, "")

	r.doc.SetFont("Arial", "I", 11)
	r.doc.Ln(8)
	r.doc.CellFormat(pdfContentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	r.doc.Ln(12)
	r.addBoxedList("Key Assumptions", r.assumptionLines())

	r.doc.Ln(8)
	r.addBoxedList("Plan Health", r.healthLines())
}

func (r *pdfReport) assumptionLines() []string {
	if len(r.projection.Assumptions) > 0 {
		return r.projection.Assumptions
	}
	return DefaultAssumptions
}

func (r *pdfReport) healthLines() []string {
	a := AssessProjection(r.projection)
	lines := []string{
		fmt.Sprintf("Funded years: %d of %d", a.FundedYears, a.YearsProjected),
		fmt.Sprintf("Total withdrawals: %s", FormatCurrency(r.projection.TotalWithdrawals)),
		fmt.Sprintf("Total federal tax: %s", FormatCurrency(r.projection.TotalFederalTax)),
		fmt.Sprintf("Ending net worth: %s", FormatCurrency(r.projection.EndingNetWorth)),
	}
	if a.FullyFunded() {
		lines = append(lines, "First shortfall: none")
	} else {
		lines = append(lines, fmt.Sprintf("First shortfall: %d (total short %s)", a.FirstShortfallYear, FormatCurrency(a.TotalShortfall)))
	}
	if a.PeakNetWorthYear > 0 {
		lines = append(lines, fmt.Sprintf("Peak net worth: %s (%d)", FormatCurrency(a.PeakNetWorth), a.PeakNetWorthYear))
	}
	return lines
}

func (r *pdfReport) addBoxedList(title string, lines []string) {
	r.doc.SetFillColor(245, 247, 250)
	r.doc.SetDrawColor(200, 200, 200)

	r.doc.SetFont("Arial", "B", 12)
	r.doc.SetTextColor(0, 51, 102)
	r.doc.CellFormat(pdfContentWidth, 8, title, "1", 1, "C", true, 0, "")

	r.doc.SetFont("Arial", "", 10)
	r.doc.SetTextColor(50, 50, 50)
	for _, line := range lines {
		r.doc.CellFormat(pdfContentWidth, 6, line, "LR", 1, "C", true, 0, "")
	}
	r.doc.CellFormat(pdfContentWidth, 1, "", "LRB", 1, "C", true, 0, "")
}

func (r *pdfReport) addYearTable() {
	r.doc.AddPage()
	r.drawSectionHeader("Year-by-Year Projection")

	widths := []float64{14, 16, 18, 26, 26, 26, 24, 30}
	headers := []string{"Year", "Ages", "Status", "Target", "Withdrawn", "Shortfall", "Fed Tax", "Net Worth"}
	r.drawTableHeader(headers, widths)

	r.doc.SetFont("Arial", "", 8)
	for i := range r.projection.Years {
		row := &r.projection.Years[i]

		if r.doc.GetY() > 265 {
			r.doc.AddPage()
			r.drawTableHeader(headers, widths)
			r.doc.SetFont("Arial", "", 8)
		}

		if i%2 == 0 {
			r.doc.SetFillColor(250, 250, 250)
		} else {
			r.doc.SetFillColor(255, 255, 255)
		}
		if row.Plan.HasShortfall() {
			r.doc.SetTextColor(180, 0, 0)
		} else {
			r.doc.SetTextColor(50, 50, 50)
		}

		cells := []string{
			intToString(row.Year),
			agesLabel(row),
			statusLabel(row),
			FormatCurrency(row.TargetSpend),
			FormatCurrency(row.Plan.TotalWithdrawn),
			FormatCurrency(row.Plan.Shortfall),
			FormatCurrency(row.Tax.FederalTax),
			FormatCurrency(row.NetWorth),
		}
		for j, cell := range cells {
			align := "R"
			if j < 3 {
				align = "L"
			}
			r.doc.CellFormat(widths[j], 5, cell, "1", 0, align, true, 0, "")
		}
		r.doc.Ln(-1)
	}
	r.doc.SetTextColor(50, 50, 50)
}

func (r *pdfReport) drawSectionHeader(title string) {
	r.doc.SetFont("Arial", "B", 16)
	r.doc.SetTextColor(0, 51, 102)
	r.doc.CellFormat(pdfContentWidth, 10, title, "", 1, "L", false, 0, "")
	r.doc.SetDrawColor(0, 51, 102)
	r.doc.Line(pdfMarginLeft, r.doc.GetY(), pdfMarginLeft+pdfContentWidth, r.doc.GetY())
	r.doc.Ln(5)
}

func (r *pdfReport) drawTableHeader(headers []string, widths []float64) {
	r.doc.SetFillColor(0, 51, 102)
	r.doc.SetTextColor(255, 255, 255)
	r.doc.SetFont("Arial", "B", 8)
	for i, header := range headers {
		align := "R"
		if i < 3 {
			align = "L"
		}
		r.doc.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.doc.Ln(-1)
}
