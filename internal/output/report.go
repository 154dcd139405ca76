package output

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// ErrUnsupportedFormat is returned when no formatter matches the requested name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// GenerateReport runs the named formatter and writes a timestamped report
// file into dir (the working directory when dir is empty). The format "all"
// writes one file per registered formatter.
func GenerateReport(projection *domain.PlanProjection, format, dir string) error {
	if NormalizeFormatName(format) == "all" {
		for _, f := range builtInFormatters {
			if _, err := WriteFormatted(f, projection, dir, FileExtension(f.Name())); err != nil {
				return fmt.Errorf("%s report: %w", f.Name(), err)
			}
		}
		return nil
	}

	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	_, err := WriteFormatted(f, projection, dir, FileExtension(f.Name()))
	return err
}

// SavePlanConfig writes a plan configuration back out as YAML.
func SavePlanConfig(cfg *domain.PlanConfig, filename string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
