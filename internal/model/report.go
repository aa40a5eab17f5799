package model

import "time"

// Report is the JSON report written after a prediction batch
type Report struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`     // Dataset file that was scored
	CreatedAt time.Time `json:"created_at"` // When the batch finished
	Settings  Settings  `json:"settings"`   // Predictor settings used for the run

	Predictions []Prediction `json:"predictions"`

	Failures int    `json:"failures"`        // Records that fell back to the majority label
	Score    *Score `json:"score,omitempty"` // Present only when the dataset is labelled
}

// Settings records how the predictor was configured
type Settings struct {
	UseCoref bool   `json:"use_coref"`
	Majority Label  `json:"majority"`
	Provider string `json:"provider,omitempty"`
	Workers  int    `json:"workers"`
}

// Prediction is the outcome for a single record
type Prediction struct {
	Index    int            `json:"index"`
	Label    Label          `json:"label"`
	Fallback bool           `json:"fallback"`          // Majority label used
	Reason   string         `json:"reason,omitempty"`  // Why the fallback happened
	Overlap  *OverlapResult `json:"overlap,omitempty"` // Alignment, if one was found
}

// Score is the evaluation of predictions against ground truth
type Score struct {
	Accuracy       float64 `json:"accuracy"`
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
}
