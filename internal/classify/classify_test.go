package classify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/model"
)

const (
	trophyPremise     = "The trophy doesn't fit in the suitcase because it is too big."
	councilmenPremise = "The city councilmen refused the demonstrators a permit because they feared violence."
)

func trophyDocument() *model.Document {
	return &model.Document{
		Tokens: strings.Fields("The trophy does n't fit in the suitcase because it is too big ."),
		Clusters: []model.Cluster{{
			Main:     model.Mention{Start: 0, End: 2, Text: "The trophy"},
			Mentions: []model.Mention{{Start: 0, End: 2, Text: "The trophy"}, {Start: 9, End: 10, Text: "it"}},
		}},
	}
}

// councilmenDocument clusters "they" with either the councilmen or the demonstrators
func councilmenDocument(antecedent model.Mention) *model.Document {
	return &model.Document{
		Tokens: strings.Fields("The city councilmen refused the demonstrators a permit because they feared violence ."),
		Clusters: []model.Cluster{{
			Main:     antecedent,
			Mentions: []model.Mention{antecedent, {Start: 9, End: 10}},
		}},
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, document string) (*model.Document, error) {
	return nil, errors.New("connection refused")
}

func TestPredictLabel_Trophy(t *testing.T) {
	c := New(annotate.NewStatic(nil, map[string]*model.Document{trophyPremise: trophyDocument()}), nil)

	tests := []struct {
		span     string
		expected model.Label
	}{
		{"the trophy", model.Entailment},
		{"trophy", model.Entailment},
		{"The suitcase", model.NotEntailment},
	}

	for _, tt := range tests {
		label, err := c.PredictLabel(context.Background(), trophyPremise, 8, "it", tt.span)
		if err != nil {
			t.Fatalf("PredictLabel(%q) failed: %v", tt.span, err)
		}
		if label != tt.expected {
			t.Errorf("PredictLabel(%q): expected %s, got %s", tt.span, tt.expected, label)
		}
	}
}

func TestPredictLabel_Councilmen(t *testing.T) {
	councilmen := model.Mention{Start: 0, End: 3, Text: "The city councilmen"}
	demonstrators := model.Mention{Start: 4, End: 6}

	tests := []struct {
		name       string
		antecedent model.Mention
		span       string
		expected   model.Label
	}{
		{"councilmen cluster, councilmen span", councilmen, "councilmen", model.Entailment},
		{"councilmen cluster, demonstrators span", councilmen, "demonstrators", model.NotEntailment},
		{"demonstrators cluster, demonstrators span", demonstrators, "demonstrators", model.Entailment},
		{"demonstrators cluster, councilmen span", demonstrators, "councilmen", model.NotEntailment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := map[string]*model.Document{councilmenPremise: councilmenDocument(tt.antecedent)}
			c := New(annotate.NewStatic(nil, docs), nil)

			label, err := c.PredictLabel(context.Background(), councilmenPremise, 9, "they", tt.span)
			if err != nil {
				t.Fatalf("PredictLabel failed: %v", err)
			}
			if label != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, label)
			}
		})
	}
}

func TestPredictLabel_DriftScanTerminates(t *testing.T) {
	var debug bytes.Buffer
	c := New(annotate.NewStatic(nil, map[string]*model.Document{trophyPremise: trophyDocument()}), &debug)

	_, err := c.PredictLabel(context.Background(), trophyPremise, 8, "suitcase", "trophy")
	if !errors.Is(err, model.ErrTokenizationDrift) {
		t.Errorf("expected ErrTokenizationDrift, got %v", err)
	}
	if debug.Len() == 0 {
		t.Error("expected a debug diagnostic")
	}

	_, err = c.PredictLabel(context.Background(), trophyPremise, 100, "it", "trophy")
	if !errors.Is(err, model.ErrTokenizationDrift) {
		t.Errorf("expected ErrTokenizationDrift for an index past the end, got %v", err)
	}
}

func TestPredictLabel_NoClusters(t *testing.T) {
	docs := map[string]*model.Document{
		"Nothing refers here.": {Tokens: []string{"Nothing", "refers", "here", "."}},
	}
	c := New(annotate.NewStatic(nil, docs), nil)

	for _, premise := range []string{"Nothing refers here.", "Never resolved."} {
		_, err := c.PredictLabel(context.Background(), premise, 0, "Nothing", "it")
		if !errors.Is(err, model.ErrCoreferenceUnavailable) {
			t.Errorf("%q: expected ErrCoreferenceUnavailable, got %v", premise, err)
		}
	}
}

func TestPredictLabel_NotInCluster(t *testing.T) {
	c := New(annotate.NewStatic(nil, map[string]*model.Document{trophyPremise: trophyDocument()}), nil)

	_, err := c.PredictLabel(context.Background(), trophyPremise, 4, "suitcase", "trophy")
	if !errors.Is(err, model.ErrCoreferenceUnavailable) {
		t.Errorf("expected ErrCoreferenceUnavailable, got %v", err)
	}
}

func TestPredictLabel_ResolverError(t *testing.T) {
	c := New(failingResolver{}, nil)

	_, err := c.PredictLabel(context.Background(), trophyPremise, 8, "it", "trophy")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if model.IsRecordLevel(err) {
		t.Errorf("expected a service error, got record-level %v", err)
	}
}
