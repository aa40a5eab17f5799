package model

import "fmt"

// Label is a WNLI entailment label
type Label int

const (
	NotEntailment Label = 0 // Hypothesis is not implied by the premise
	Entailment    Label = 1 // Hypothesis is implied by the premise

	// Majority is the most frequent label in the WNLI training split
	Majority = NotEntailment
)

func (l Label) String() string {
	switch l {
	case Entailment:
		return "entailment"
	case NotEntailment:
		return "not_entailment"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// ParseLabel parses a dataset label column ("0"/"1" or the GLUE names)
func ParseLabel(s string) (Label, error) {
	switch s {
	case "1", "entailment":
		return Entailment, nil
	case "0", "not_entailment":
		return NotEntailment, nil
	default:
		return 0, fmt.Errorf("unknown label %q", s)
	}
}

// SentencePair is one premise/hypothesis pair
type SentencePair struct {
	Premise    string `json:"sentence1"`       // Premise (sentence1)
	Hypothesis string `json:"sentence2"`       // Hypothesis (sentence2)
	Label      *Label `json:"label,omitempty"` // Ground truth, nil during inference
}

// Record is a sentence pair with its position in the source dataset
type Record struct {
	Index int `json:"index"`
	SentencePair
}

// HasLabels reports whether every record carries a ground-truth label
func HasLabels(records []Record) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if r.Label == nil {
			return false
		}
	}
	return true
}

// Labels returns the ground-truth labels of records (records must be labelled)
func Labels(records []Record) []Label {
	labels := make([]Label, 0, len(records))
	for _, r := range records {
		if r.Label != nil {
			labels = append(labels, *r.Label)
		}
	}
	return labels
}
