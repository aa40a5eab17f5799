package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/augment"
	"github.com/ppiankov/wnli/internal/lexicon"
	"github.com/ppiankov/wnli/internal/model"
)

const trophyPremise = "The trophy doesn't fit in the suitcase because it is too big."

func label(l model.Label) *model.Label {
	return &l
}

func trophyResolver() *annotate.FileAnnotator {
	doc := &model.Document{
		Tokens: strings.Fields("The trophy does n't fit in the suitcase because it is too big ."),
		Clusters: []model.Cluster{{
			Main:     model.Mention{Start: 0, End: 2, Text: "The trophy"},
			Mentions: []model.Mention{{Start: 0, End: 2, Text: "The trophy"}, {Start: 9, End: 10, Text: "it"}},
		}},
	}
	return annotate.NewStatic(nil, map[string]*model.Document{trophyPremise: doc})
}

func testRecords() []model.Record {
	return []model.Record{
		{Index: 0, SentencePair: model.SentencePair{Premise: trophyPremise, Hypothesis: "The trophy is too big.", Label: label(model.Entailment)}},
		{Index: 1, SentencePair: model.SentencePair{Premise: trophyPremise, Hypothesis: "The suitcase is too big.", Label: label(model.NotEntailment)}},
		{Index: 2, SentencePair: model.SentencePair{Premise: "The cat sat on the mat.", Hypothesis: "Dogs bark loudly at every passing car.", Label: label(model.Entailment)}},
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, document string) (*model.Document, error) {
	return nil, errors.New("connection refused")
}

func TestPredictAll_UseCoref(t *testing.T) {
	var progress bytes.Buffer
	p := NewPredictor(trophyResolver(), Options{UseCoref: true, Majority: model.Majority, Workers: 2, Progress: &progress})

	result, err := p.PredictAll(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}

	expected := []model.Label{model.Entailment, model.NotEntailment, model.Majority}
	for i, l := range expected {
		if result.Labels[i] != l {
			t.Errorf("record %d: expected %s, got %s", i, l, result.Labels[i])
		}
	}

	if result.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failures)
	}
	if !result.Predictions[2].Fallback || result.Predictions[2].Reason == "" {
		t.Errorf("expected record 2 to fall back with a reason, got %+v", result.Predictions[2])
	}
	if result.Predictions[0].Overlap == nil || result.Predictions[0].Overlap.HypothesisRefSpan != "trophy" {
		t.Errorf("expected overlap on trophy, got %+v", result.Predictions[0].Overlap)
	}
	if !strings.Contains(progress.String(), "Could not use coref model for 1/3 examples") {
		t.Errorf("unexpected progress output %q", progress.String())
	}
}

func TestPredictAll_MajorityWithoutCoref(t *testing.T) {
	for _, majority := range []model.Label{model.NotEntailment, model.Entailment} {
		var progress bytes.Buffer
		p := NewPredictor(failingResolver{}, Options{UseCoref: false, Majority: majority, Workers: 3, Progress: &progress})

		result, err := p.PredictAll(context.Background(), testRecords())
		if err != nil {
			t.Fatalf("PredictAll failed: %v", err)
		}

		for i, l := range result.Labels {
			if l != majority {
				t.Errorf("record %d: expected majority %s, got %s", i, majority, l)
			}
		}
		if result.Failures != 0 {
			t.Errorf("expected no failures, got %d", result.Failures)
		}
		if progress.Len() != 0 {
			t.Errorf("expected no progress output without coref, got %q", progress.String())
		}
	}
}

func TestPredictAll_ServiceErrorAborts(t *testing.T) {
	p := NewPredictor(failingResolver{}, Options{UseCoref: true, Workers: 2})

	result, err := p.PredictAll(context.Background(), testRecords())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected the resolver error, got %v", err)
	}
}

func TestPredictAll_DebugDoesNotChangeLabels(t *testing.T) {
	var debug bytes.Buffer
	quiet := NewPredictor(trophyResolver(), Options{UseCoref: true, Workers: 2})
	loud := NewPredictor(trophyResolver(), Options{UseCoref: true, Workers: 2, Debug: &debug})

	a, err := quiet.PredictAll(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}
	b, err := loud.PredictAll(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}

	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] {
			t.Errorf("record %d: debug changed label from %s to %s", i, a.Labels[i], b.Labels[i])
		}
	}

	out := debug.String()
	for _, want := range []string{"[premise_ref]: it", "[hypothesis_ref]: trophy", "[actual_label]: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected debug output to contain %q", want)
		}
	}
}

func TestBuildReport(t *testing.T) {
	records := testRecords()
	p := NewPredictor(trophyResolver(), Options{UseCoref: true, Workers: 1})

	result, err := p.PredictAll(context.Background(), records)
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}

	report, err := BuildReport("dev.tsv", model.Settings{UseCoref: true, Workers: 1}, records, result)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if report.Score == nil {
		t.Fatal("expected a score for a labelled dataset")
	}
	if report.Score.Correct != 2 || report.Score.Total != 3 {
		t.Errorf("expected 2/3 correct, got %d/%d", report.Score.Correct, report.Score.Total)
	}

	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := NewRenderer().RenderJSON(report, path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.RunID != report.RunID || len(decoded.Predictions) != 3 {
		t.Errorf("unexpected decoded report %+v", decoded)
	}

	var summary bytes.Buffer
	NewRenderer().RenderSummary(&summary, report)
	if !strings.Contains(summary.String(), "(2/3)") {
		t.Errorf("unexpected summary %q", summary.String())
	}
}

func TestBuildReport_Unlabelled(t *testing.T) {
	records := []model.Record{{Index: 0, SentencePair: model.SentencePair{Premise: "a", Hypothesis: "b"}}}
	result := &PredictResult{Labels: []model.Label{model.Majority}, Predictions: []model.Prediction{{Index: 0}}}

	report, err := BuildReport("test.tsv", model.Settings{}, records, result)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if report.Score != nil {
		t.Errorf("expected no score, got %+v", report.Score)
	}
}

func TestRenderLabels(t *testing.T) {
	result := &PredictResult{Predictions: []model.Prediction{{Index: 4, Label: model.Entailment}, {Index: 7}}}

	var buf bytes.Buffer
	if err := NewRenderer().RenderLabels(&buf, result); err != nil {
		t.Fatalf("RenderLabels failed: %v", err)
	}

	expected := "index\tprediction\n4\t1\n7\t0\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestAugmentAll(t *testing.T) {
	hypothesis := "The trophy is too big."
	parses := map[string][]model.Token{
		hypothesis: {
			{Index: 0, Text: "The", Dep: "det"},
			{Index: 1, Text: "trophy", Dep: "nsubj", Children: []int{0}},
			{Index: 2, Text: "is", Dep: "ROOT"},
			{Index: 3, Text: "too", Dep: "advmod"},
			{Index: 4, Text: "big", Dep: "acomp"},
			{Index: 5, Text: ".", Dep: "punct"},
		},
		trophyPremise: {
			{Index: 0, Text: "The", Dep: "det"},
			{Index: 1, Text: "trophy", Dep: "nsubj"},
			{Index: 2, Text: "suitcase", Dep: "pobj"},
		},
	}
	table := lexicon.NewStaticTable(map[string]model.Pronoun{"trophy": model.PronounIt, "suitcase": model.PronounIt})
	a := augment.New(annotate.NewStatic(parses, nil), lexicon.NewEnglishInflector(), table, augment.FixedPicker(model.PronounHe))

	records := []model.Record{
		{Index: 0, SentencePair: model.SentencePair{Premise: trophyPremise, Hypothesis: hypothesis}},
		{Index: 1, SentencePair: model.SentencePair{Premise: trophyPremise, Hypothesis: "Never parsed."}},
	}

	result, err := AugmentAll(context.Background(), a, records, 2)
	if err != nil {
		t.Fatalf("AugmentAll failed: %v", err)
	}

	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped record, got %d", result.Skipped)
	}
	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if *result.Pairs[0].Label != model.Entailment || result.Pairs[0].Hypothesis != hypothesis {
		t.Errorf("unexpected positive pair %+v", result.Pairs[0])
	}
	if *result.Pairs[1].Label != model.NotEntailment || result.Pairs[1].Hypothesis != "Suitcase is too big." {
		t.Errorf("unexpected negative pair %+v", result.Pairs[1])
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, result.Pairs); err != nil {
		t.Fatalf("WriteJSONL failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"sentence1":"`+trophyPremise+` It is too big."`) || !strings.Contains(lines[0], `"label":1`) {
		t.Errorf("unexpected first line %s", lines[0])
	}
}

// jitterParser answers from fixtures after a random delay, so records finish
// in a different order on every run
type jitterParser struct {
	parses map[string][]model.Token
}

func (p jitterParser) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	time.Sleep(time.Duration(rand.Intn(3000)) * time.Microsecond)
	tokens, ok := p.parses[sentence]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrParseFailure, sentence)
	}
	return tokens, nil
}

func personRecords(n int) ([]model.Record, map[string][]model.Token) {
	parses := map[string][]model.Token{}
	records := make([]model.Record, n)
	for i := range records {
		hypothesis := fmt.Sprintf("The doctor waved %d times.", i)
		parses[hypothesis] = []model.Token{
			{Index: 0, Text: "The", Dep: "det"},
			{Index: 1, Text: "doctor", Dep: "nsubj", Children: []int{0}},
			{Index: 2, Text: "waved", Dep: "ROOT", Children: []int{1, 4, 5}},
			{Index: 3, Text: fmt.Sprint(i), Dep: "nummod"},
			{Index: 4, Text: "times", Dep: "npadvmod", Children: []int{3}},
			{Index: 5, Text: ".", Dep: "punct"},
		}
		records[i] = model.Record{Index: i, SentencePair: model.SentencePair{Premise: "The nurse left.", Hypothesis: hypothesis}}
	}
	return records, parses
}

func TestAugmentAll_SeedIsReproducibleAcrossWorkers(t *testing.T) {
	records, parses := personRecords(40)
	table := lexicon.NewStaticTable(map[string]model.Pronoun{"doctor": model.PronounPerson})

	run := func() []string {
		a := augment.New(jitterParser{parses: parses}, lexicon.NewEnglishInflector(), table, augment.NewSeededPicker(7))
		result, err := AugmentAll(context.Background(), a, records, 4)
		if err != nil {
			t.Fatalf("AugmentAll failed: %v", err)
		}
		premises := make([]string, len(result.Pairs))
		for i, p := range result.Pairs {
			premises[i] = p.Premise
		}
		return premises
	}

	first, second := run(), run()
	if len(first) != len(records) {
		t.Fatalf("expected %d pairs, got %d", len(records), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("pair %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}

type refusingParser struct{}

var errRefused = errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")

func (refusingParser) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	return nil, errRefused
}

func TestAugmentAll_ParserOutageAborts(t *testing.T) {
	records, _ := personRecords(6)
	table := lexicon.NewStaticTable(map[string]model.Pronoun{"doctor": model.PronounPerson})
	a := augment.New(refusingParser{}, lexicon.NewEnglishInflector(), table, augment.FixedPicker(model.PronounHe))

	result, err := AugmentAll(context.Background(), a, records, 3)
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected the parser error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
}
