package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/text"
)

// FileAnnotator serves annotations computed ahead of time, keyed by the
// whitespace-cleaned text they were computed for
type FileAnnotator struct {
	parses    map[string][]model.Token
	documents map[string]*model.Document
}

// annotationFile is the on-disk layout read by LoadFileAnnotator
type annotationFile struct {
	Parses    map[string][]model.Token   `json:"parses"`
	Documents map[string]*model.Document `json:"documents"`
}

// NewStatic builds a FileAnnotator from in-memory annotations
func NewStatic(parses map[string][]model.Token, documents map[string]*model.Document) *FileAnnotator {
	a := &FileAnnotator{
		parses:    make(map[string][]model.Token, len(parses)),
		documents: make(map[string]*model.Document, len(documents)),
	}
	for k, v := range parses {
		a.parses[annotationKey(k)] = v
	}
	for k, v := range documents {
		a.documents[annotationKey(k)] = v
	}
	return a
}

// LoadFileAnnotator reads annotations from a JSON file
func LoadFileAnnotator(path string) (*FileAnnotator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}

	var f annotationFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse annotations: %w", err)
	}

	for sentence, tokens := range f.Parses {
		if err := validateTokens(tokens); err != nil {
			return nil, fmt.Errorf("annotations for %q: %w", sentence, err)
		}
	}
	for document, doc := range f.Documents {
		if doc == nil {
			continue
		}
		if err := validateDocument(doc); err != nil {
			return nil, fmt.Errorf("annotations for %q: %w", document, err)
		}
	}

	return NewStatic(f.Parses, f.Documents), nil
}

// Name returns the backend name
func (a *FileAnnotator) Name() string {
	return "file"
}

// Parse returns the stored parse of a sentence
func (a *FileAnnotator) Parse(ctx context.Context, sentence string) ([]model.Token, error) {
	tokens, ok := a.parses[annotationKey(sentence)]
	if !ok {
		return nil, fmt.Errorf("%w: no parse stored for %q", model.ErrParseFailure, sentence)
	}
	return tokens, nil
}

// Resolve returns the stored coreference document, or nil if none is stored
func (a *FileAnnotator) Resolve(ctx context.Context, document string) (*model.Document, error) {
	return a.documents[annotationKey(document)], nil
}

func annotationKey(s string) string {
	return strings.TrimSpace(text.CleanSentence(s))
}
