package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ppiankov/wnli/internal/augment"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/worker"
)

// AugmentedPair is one synthesized training example
type AugmentedPair struct {
	SourceIndex int `json:"source_index"`
	model.SentencePair
}

// AugmentResult holds the examples built from a dataset
type AugmentResult struct {
	Pairs   []AugmentedPair
	Skipped int // Records the augmenter could not handle
}

// AugmentAll augments every record: the augmented premise with the original
// hypothesis is an entailment example, each negative hypothesis a
// non-entailment one. Records without a unique subject or pronoun are
// skipped; a parser that fails outright aborts the batch.
func AugmentAll(ctx context.Context, a *augment.Augmenter, records []model.Record, workers int) (*AugmentResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	var errOnce sync.Once

	fn := func(ctx context.Context, record model.Record) (*model.AugmentationResult, error) {
		result, err := a.AugmentRecord(ctx, record)
		if err != nil && !model.IsRecordLevel(err) {
			errOnce.Do(func() {
				firstErr = fmt.Errorf("record %d: %w", record.Index, err)
				cancel()
			})
		}
		return result, err
	}

	results := worker.NewBatchProcessor(fn, workers).ProcessRecords(ctx, records)

	if firstErr != nil {
		return nil, firstErr
	}

	out := &AugmentResult{}
	for _, r := range results {
		if r.Error != nil {
			if model.IsRecordLevel(r.Error) {
				out.Skipped++
				continue
			}
			return nil, fmt.Errorf("record %d: %w", r.Record.Index, r.Error)
		}
		out.Pairs = append(out.Pairs, pairsFor(r.Record.Index, r.Value)...)
	}

	return out, nil
}

func pairsFor(index int, result *model.AugmentationResult) []AugmentedPair {
	entailment, notEntailment := model.Entailment, model.NotEntailment

	pairs := []AugmentedPair{{
		SourceIndex: index,
		SentencePair: model.SentencePair{
			Premise:    result.NewPremise,
			Hypothesis: result.PositiveHypothesis,
			Label:      &entailment,
		},
	}}
	for _, neg := range result.NegativeHypotheses {
		pairs = append(pairs, AugmentedPair{
			SourceIndex: index,
			SentencePair: model.SentencePair{
				Premise:    result.NewPremise,
				Hypothesis: neg,
				Label:      &notEntailment,
			},
		})
	}
	return pairs
}

// WriteJSONL writes one JSON object per pair
func WriteJSONL(w io.Writer, pairs []AugmentedPair) error {
	enc := json.NewEncoder(w)
	for _, p := range pairs {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode pair: %w", err)
		}
	}
	return nil
}
