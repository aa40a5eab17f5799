// Package annotate wraps the external linguistic services the classifier and
// augmenter consume: a dependency parser and a coreference resolver.
package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
)

// Parser dependency-parses a single sentence
type Parser interface {
	Parse(ctx context.Context, sentence string) ([]model.Token, error)
}

// Resolver runs coreference resolution over a document. A nil document with
// a nil error means the resolver produced nothing for the text.
type Resolver interface {
	Resolve(ctx context.Context, document string) (*model.Document, error)
}

// Annotator is a backend that provides both services
type Annotator interface {
	Parser
	Resolver

	// Name returns the backend name
	Name() string
}

// validateTokens checks that parser output is internally consistent and
// that every token's index is its position in the stream
func validateTokens(tokens []model.Token) error {
	for i, tok := range tokens {
		if tok.Index != i {
			return fmt.Errorf("token %d (%q) has index %d", i, tok.Text, tok.Index)
		}
		for _, c := range tok.Children {
			if c < 0 || c >= len(tokens) || c == i {
				return fmt.Errorf("token %d (%q) has invalid child %d", i, tok.Text, c)
			}
		}
	}
	return nil
}

// validateDocument checks mention spans against the token stream and fills
// in missing mention text
func validateDocument(doc *model.Document) error {
	fix := func(m *model.Mention) error {
		if m.Start < 0 || m.End > len(doc.Tokens) || m.Start >= m.End {
			return fmt.Errorf("mention [%d,%d) outside %d tokens", m.Start, m.End, len(doc.Tokens))
		}
		if m.Text == "" {
			m.Text = strings.Join(doc.Tokens[m.Start:m.End], " ")
		}
		return nil
	}

	for ci := range doc.Clusters {
		c := &doc.Clusters[ci]
		if err := fix(&c.Main); err != nil {
			return fmt.Errorf("cluster %d main: %w", ci, err)
		}
		for mi := range c.Mentions {
			if err := fix(&c.Mentions[mi]); err != nil {
				return fmt.Errorf("cluster %d: %w", ci, err)
			}
		}
	}
	return nil
}

// Checker is implemented by backends that can check their service
type Checker interface {
	IsAvailable(ctx context.Context) bool
}

// CheckAvailable looks through wrappers for a Checker and asks it. Backends
// without one are local and always available.
func CheckAvailable(ctx context.Context, a Annotator) bool {
	for a != nil {
		if c, ok := a.(Checker); ok {
			return c.IsAvailable(ctx)
		}
		w, ok := a.(interface{ Unwrap() Annotator })
		if !ok {
			return true
		}
		a = w.Unwrap()
	}
	return true
}
