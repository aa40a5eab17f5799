package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/score"
)

// BuildReport assembles the report of a finished batch. The score is filled
// in only when every record carries a label.
func BuildReport(source string, settings model.Settings, records []model.Record, result *PredictResult) (*model.Report, error) {
	report := &model.Report{
		RunID:       uuid.NewString(),
		Source:      source,
		CreatedAt:   time.Now().UTC(),
		Settings:    settings,
		Predictions: result.Predictions,
		Failures:    result.Failures,
	}

	if model.HasLabels(records) {
		s, err := score.Evaluate(result.Labels, model.Labels(records))
		if err != nil {
			return nil, fmt.Errorf("score predictions: %w", err)
		}
		report.Score = &s
	}

	return report, nil
}
