// Package pipeline runs the aligner and classifier over a dataset and
// collects labels, fallbacks and reports.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/wnli/internal/align"
	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/classify"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/worker"
)

// Options configures a Predictor
type Options struct {
	UseCoref bool
	Majority model.Label
	Workers  int

	// Debug receives per-record alignment traces; nil disables them
	Debug io.Writer

	// Progress receives the failure summary after a batch; nil disables it
	Progress io.Writer
}

// Predictor labels WNLI records
type Predictor struct {
	resolver   annotate.Resolver
	aligner    *align.Aligner
	classifier *classify.Classifier
	opts       Options

	debugMu sync.Mutex
}

// PredictResult holds the outcome of a batch, in record order
type PredictResult struct {
	Labels      []model.Label
	Predictions []model.Prediction
	Failures    int
}

// NewPredictor creates a predictor backed by resolver
func NewPredictor(resolver annotate.Resolver, opts Options) *Predictor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Predictor{
		resolver:   resolver,
		aligner:    &align.Aligner{Debug: opts.Debug},
		classifier: classify.New(resolver, opts.Debug),
		opts:       opts,
	}
}

// PredictAll labels every record. Records that cannot be aligned or resolved
// get the majority label and count as failures; a service error aborts the
// batch.
func (p *Predictor) PredictAll(ctx context.Context, records []model.Record) (*PredictResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failures atomic.Int64
	var firstErr error
	var errOnce sync.Once

	fn := func(ctx context.Context, record model.Record) (model.Prediction, error) {
		pred, err := p.PredictOne(ctx, record)
		if err != nil {
			errOnce.Do(func() {
				firstErr = fmt.Errorf("record %d: %w", record.Index, err)
				cancel()
			})
			return pred, err
		}
		if pred.Fallback && p.opts.UseCoref {
			failures.Add(1)
		}
		return pred, nil
	}

	results := worker.NewBatchProcessor(fn, p.opts.Workers).ProcessRecords(ctx, records)

	if firstErr != nil {
		return nil, firstErr
	}

	out := &PredictResult{
		Labels:      make([]model.Label, len(results)),
		Predictions: make([]model.Prediction, len(results)),
		Failures:    int(failures.Load()),
	}
	for i, r := range results {
		if r.Error != nil {
			return nil, fmt.Errorf("record %d: %w", r.Record.Index, r.Error)
		}
		out.Labels[i] = r.Value.Label
		out.Predictions[i] = r.Value
	}

	if p.opts.UseCoref && p.opts.Progress != nil {
		_, _ = fmt.Fprintf(p.opts.Progress, "Could not use coref model for %d/%d examples\n", out.Failures, len(records))
	}

	return out, nil
}

// PredictOne labels a single record. Only service errors are returned;
// record-level failures become a majority-label prediction with a reason.
func (p *Predictor) PredictOne(ctx context.Context, record model.Record) (model.Prediction, error) {
	pred := model.Prediction{Index: record.Index, Label: p.opts.Majority}
	if !p.opts.UseCoref {
		return pred, nil
	}

	var trace *bytes.Buffer
	aligner := p.aligner
	classifier := p.classifier
	if p.opts.Debug != nil {
		trace = &bytes.Buffer{}
		aligner = &align.Aligner{Debug: trace}
		classifier = classify.New(p.resolver, trace)
		_, _ = fmt.Fprintf(trace, "%s\n", separator)
		defer p.flushTrace(trace)
	}

	overlap, err := aligner.FindOverlap(record.Premise, record.Hypothesis)
	if err != nil {
		return p.fallback(pred, err)
	}
	pred.Overlap = overlap

	label, err := classifier.PredictLabel(ctx, record.Premise, overlap.PremiseRefIndex, overlap.PremiseRefToken, overlap.HypothesisRefSpan)

	if trace != nil {
		writeTrace(trace, record, overlap, label, err, p.opts.Majority)
	}

	if err != nil {
		return p.fallback(pred, err)
	}

	pred.Label = label
	return pred, nil
}

func (p *Predictor) fallback(pred model.Prediction, err error) (model.Prediction, error) {
	if !model.IsRecordLevel(err) {
		return pred, err
	}
	pred.Label = p.opts.Majority
	pred.Fallback = true
	pred.Reason = err.Error()
	return pred, nil
}

func (p *Predictor) flushTrace(trace *bytes.Buffer) {
	p.debugMu.Lock()
	defer p.debugMu.Unlock()
	_, _ = p.opts.Debug.Write(trace.Bytes())
}

const separator = "=================================================="

func writeTrace(w io.Writer, record model.Record, overlap *model.OverlapResult, label model.Label, err error, majority model.Label) {
	_, _ = fmt.Fprintf(w, "[premise]: %s\n", record.Premise)
	_, _ = fmt.Fprintf(w, "[hypothesis]: %s\n", record.Hypothesis)
	_, _ = fmt.Fprintf(w, "[premise_ref_index]: %d\n", overlap.PremiseRefIndex)
	_, _ = fmt.Fprintf(w, "[premise_ref]: %s\n", overlap.PremiseRefToken)
	_, _ = fmt.Fprintf(w, "[hypothesis_ref_index]: %d\n", overlap.HypothesisRefIndex)
	_, _ = fmt.Fprintf(w, "[hypothesis_ref]: %s\n", overlap.HypothesisRefSpan)
	_, _ = fmt.Fprintf(w, "[prefix]: %s\n", overlap.Prefix)
	_, _ = fmt.Fprintf(w, "[suffix]: %s\n", overlap.Suffix)
	if err != nil {
		_, _ = fmt.Fprintf(w, "[pred_label]: none -> %d (%v)\n", majority, err)
	} else {
		_, _ = fmt.Fprintf(w, "[pred_label]: %d\n", label)
	}
	if record.Label != nil {
		_, _ = fmt.Fprintf(w, "[actual_label]: %d\n", *record.Label)
	}
}
