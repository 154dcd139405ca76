package output

import (
	"encoding/json"

	"github.com/drawplan/withdrawal-planner/internal/domain"
)

// JSONFormatter serializes the full projection as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(projection *domain.PlanProjection) ([]byte, error) {
	return json.MarshalIndent(projection, "", "  ")
}
