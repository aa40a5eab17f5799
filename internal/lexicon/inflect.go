package lexicon

import (
	"strings"

	pluralize "github.com/gertd/go-pluralize"
	"github.com/ppiankov/wnli/internal/model"
)

// Inflector answers whether a noun is in its singular form
type Inflector interface {
	IsSingular(word string) bool
}

// EnglishInflector checks English noun number with go-pluralize's rule set.
// Words the rules misread (names ending in -s, -men words that are not
// plurals of -man) are pinned by override tables consulted first.
//
// Add* methods must be called before the inflector is shared between
// goroutines.
type EnglishInflector struct {
	rules    *pluralize.Client
	singular map[string]bool
	plural   map[string]bool
}

// irregulars are single -> plural pairs added to the library's own list
var irregulars = [][2]string{
	{"louse", "lice"},
	{"die", "dice"},
	{"criterion", "criteria"},
	{"phenomenon", "phenomena"},
	{"alumnus", "alumni"},
}

// NewEnglishInflector returns an inflector with the built-in overrides
func NewEnglishInflector() *EnglishInflector {
	inf := &EnglishInflector{
		rules:    pluralize.NewClient(),
		singular: make(map[string]bool),
		plural:   make(map[string]bool),
	}

	for _, pair := range irregulars {
		inf.rules.AddIrregularRule(pair[0], pair[1])
	}

	inf.AddSingular(
		// given names and surnames
		"james", "thomas", "charles", "lucas", "carlos", "nicholas", "louis",
		"dennis", "chris", "francis", "marcus", "jesus", "agnes", "doris",
		"frances", "gladys", "iris", "lewis", "miles", "phyllis", "travis",
		"jones", "davis", "ross", "douglas", "andreas", "tobias", "elias",
		// -men that are not plurals of -man
		"specimen", "abdomen", "stamen", "acumen", "semen", "omen", "hymen",
		"regimen",
		"bus", "lens", "canvas", "atlas", "bias", "chaos", "news",
	)

	inf.AddPlural(
		"they", "we", "them", "us", "these", "those",
		"police", "cattle", "scissors", "trousers", "pants", "jeans",
		"glasses", "clothes", "octopi",
	)

	return inf
}

// AddSingular pins words as singular
func (i *EnglishInflector) AddSingular(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		delete(i.plural, w)
		i.singular[w] = true
	}
}

// AddPlural pins words as plural
func (i *EnglishInflector) AddPlural(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		delete(i.singular, w)
		i.plural[w] = true
	}
}

// IsSingular reports whether word is singular. Uncountable words count as
// singular.
func (i *EnglishInflector) IsSingular(word string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return true
	}

	if i.singular[w] {
		return true
	}
	if i.plural[w] {
		return false
	}

	return i.rules.IsSingular(w)
}

// NewInflectorFor returns the built-in inflector with the nouns of table
// pinned to the number their pronoun implies, so a noun the table maps to
// he, she, it or person is never read as plural
func NewInflectorFor(table *StaticTable) *EnglishInflector {
	inf := NewEnglishInflector()
	for word, p := range table.entries {
		if p.Category() == model.CategoryPlural {
			inf.AddPlural(word)
		} else {
			inf.AddSingular(word)
		}
	}
	return inf
}
