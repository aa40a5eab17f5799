package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/wnli/internal/model"
)

// Renderer writes reports and labels
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report interface{}, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderLabels writes one "index<TAB>label" line per prediction, GLUE
// submission style
func (r *Renderer) RenderLabels(w io.Writer, result *PredictResult) error {
	if _, err := fmt.Fprintln(w, "index\tprediction"); err != nil {
		return err
	}
	for _, p := range result.Predictions {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", p.Index, p.Label); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints a short summary of a report
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	_, _ = fmt.Fprintf(w, "\nRun:         %s\n", report.RunID)
	_, _ = fmt.Fprintf(w, "Source:      %s\n", report.Source)
	_, _ = fmt.Fprintf(w, "Records:     %d\n", len(report.Predictions))
	if report.Settings.UseCoref {
		_, _ = fmt.Fprintf(w, "Fallbacks:   %d\n", report.Failures)
	} else {
		_, _ = fmt.Fprintf(w, "Coref:       disabled (majority label %d)\n", report.Settings.Majority)
	}

	if s := report.Score; s != nil {
		_, _ = fmt.Fprintf(w, "Accuracy:    %.4f (%d/%d)\n", s.Accuracy, s.Correct, s.Total)
		_, _ = fmt.Fprintf(w, "Confusion:   TP=%d FP=%d TN=%d FN=%d\n", s.TruePositives, s.FalsePositives, s.TrueNegatives, s.FalseNegatives)
	}
}
