// Package score evaluates predicted labels against ground truth.
package score

import (
	"errors"
	"fmt"

	"github.com/ppiankov/wnli/internal/model"
)

// ErrLengthMismatch is returned when predictions and ground truth differ in length
var ErrLengthMismatch = errors.New("length mismatch")

// Accuracy returns the fraction of positions where predicted equals actual.
// Empty input scores 0.
func Accuracy(predicted, actual []model.Label) (float64, error) {
	s, err := Evaluate(predicted, actual)
	if err != nil {
		return 0, err
	}
	return s.Accuracy, nil
}

// Evaluate computes accuracy and the confusion counts, treating Entailment
// as the positive class
func Evaluate(predicted, actual []model.Label) (model.Score, error) {
	if len(predicted) != len(actual) {
		return model.Score{}, fmt.Errorf("%w: %d predictions, %d labels", ErrLengthMismatch, len(predicted), len(actual))
	}

	s := model.Score{Total: len(actual)}
	for i := range actual {
		switch {
		case predicted[i] == model.Entailment && actual[i] == model.Entailment:
			s.TruePositives++
		case predicted[i] == model.Entailment:
			s.FalsePositives++
		case actual[i] == model.Entailment:
			s.FalseNegatives++
		default:
			s.TrueNegatives++
		}
	}

	s.Correct = s.TruePositives + s.TrueNegatives
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}

	return s, nil
}
