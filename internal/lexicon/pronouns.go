// Package lexicon provides the lexical lookups the augmenter depends on: the
// noun-to-pronoun table and an English singular/plural check.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed pronouns.yaml
var defaultPronounTable []byte

// PronounTable maps a lowercase noun to its canonical pronoun
type PronounTable interface {
	Lookup(word string) (model.Pronoun, bool)
}

// StaticTable is an in-memory PronounTable
type StaticTable struct {
	entries map[string]model.Pronoun
}

// NewStaticTable builds a table from a noun -> pronoun map
func NewStaticTable(entries map[string]model.Pronoun) *StaticTable {
	t := &StaticTable{entries: make(map[string]model.Pronoun, len(entries))}
	for word, p := range entries {
		t.entries[strings.ToLower(word)] = p
	}
	return t
}

// Lookup returns the pronoun for a lowercase noun
func (t *StaticTable) Lookup(word string) (model.Pronoun, bool) {
	p, ok := t.entries[word]
	return p, ok
}

// Len returns the number of nouns in the table
func (t *StaticTable) Len() int {
	return len(t.entries)
}

// DefaultTable returns the built-in pronoun table
func DefaultTable() (*StaticTable, error) {
	return ParseTable(defaultPronounTable)
}

// LoadTable reads a pronoun table from a YAML file. An empty path returns the
// built-in table.
func LoadTable(path string) (*StaticTable, error) {
	if path == "" {
		return DefaultTable()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pronoun table: %w", err)
	}

	return ParseTable(data)
}

// ParseTable parses a YAML document grouping nouns under their pronoun:
//
//	he: [man, boy]
//	person: [teacher, doctor]
func ParseTable(data []byte) (*StaticTable, error) {
	var groups map[string][]string
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse pronoun table: %w", err)
	}

	entries := make(map[string]model.Pronoun)
	for key, words := range groups {
		p := model.Pronoun(strings.ToLower(strings.TrimSpace(key)))
		switch p {
		case model.PronounHe, model.PronounShe, model.PronounIt, model.PronounThey, model.PronounPerson:
		default:
			return nil, fmt.Errorf("parse pronoun table: unknown pronoun %q", key)
		}
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if prev, dup := entries[w]; dup && prev != p {
				return nil, fmt.Errorf("parse pronoun table: %q listed under both %s and %s", w, prev, p)
			}
			entries[w] = p
		}
	}

	return NewStaticTable(entries), nil
}
