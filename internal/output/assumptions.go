package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed
// outputs when the projection carries none of its own.
var DefaultAssumptions = []string{
	"Inflation (spending, benefits, brackets): 2.5% annually",
	"Savings growth: 2.0% annually",
	"Roth growth: 5.0% annually",
	"401k growth: 5.0% annually",
	"401k withholding: 20.0% of gross distributions",
	"Tax tables: 2025 levels indexed by inflation",
}
