package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(projection *domain.PlanProjection) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.PlanProjection) ([]byte, error)
}

func (ff FormatterFunc) Format(p *domain.PlanProjection) ([]byte, error) { return ff.F(p) }
func (ff FormatterFunc) Name() string                                    { return ff.ID }

// WriteFormatted runs a formatter and writes its output to a file named after
// the formatter and the current timestamp, in dir (the working directory when
// dir is empty).
func WriteFormatted(f Formatter, projection *domain.PlanProjection, dir, ext string) (string, error) {
	data, err := f.Format(projection)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("drawdown_report_%s_%s.%s", f.Name(), time.Now().Format("20060102_150405"), ext)
	if dir != "" {
		filename = filepath.Join(dir, filename)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters (extended incrementally).
var builtInFormatters = []Formatter{
	ConsoleVerboseFormatter{},
	ConsoleFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	JSONFormatter{},
	PDFFormatter{},
}

// GetFormatterByName fetches a registered formatter.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == name {
			return f
		}
	}
	// try normalized name
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"lite":            "console-lite",
	"summary":         "console-lite",
	"csv-detailed":    "detailed-csv",
	"csv-summary":     "csv",
	"json-pretty":     "json",
	"report":          "pdf",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// FileExtension maps a canonical format name to its report file extension.
func FileExtension(format string) string {
	switch NormalizeFormatName(format) {
	case "console", "console-lite":
		return "txt"
	case "detailed-csv":
		return "csv"
	default:
		return NormalizeFormatName(format)
	}
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
