// Package augment synthesizes extra NLI examples from a premise/hypothesis
// pair by replacing the hypothesis subject with a pronoun.
package augment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/lexicon"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/text"
)

// GenderPicker chooses he or she for a person of unknown gender
type GenderPicker interface {
	Pick() model.Pronoun
}

// RandomPicker draws he or she with equal probability
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker creates a picker seeded with seed
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns he or she
func (p *RandomPicker) Pick() model.Pronoun {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rng.Float64() > 0.5 {
		return model.PronounShe
	}
	return model.PronounHe
}

// FixedPicker always returns the same pronoun
type FixedPicker model.Pronoun

// Pick returns the fixed pronoun
func (p FixedPicker) Pick() model.Pronoun {
	return model.Pronoun(p)
}

// RecordPicker hands out a gender stream per dataset record, so the choice
// for a record does not depend on which worker reaches it first
type RecordPicker interface {
	GenderPicker
	ForRecord(index int) GenderPicker
}

// SeededPicker derives a RandomPicker for each record from one seed
type SeededPicker struct {
	seed   int64
	shared *RandomPicker
}

// NewSeededPicker creates a per-record picker family seeded with seed
func NewSeededPicker(seed int64) *SeededPicker {
	return &SeededPicker{seed: seed, shared: NewRandomPicker(seed)}
}

// Pick draws from a stream shared by calls that are not tied to a record
func (p *SeededPicker) Pick() model.Pronoun {
	return p.shared.Pick()
}

// ForRecord returns the picker for the record with the given dataset index
func (p *SeededPicker) ForRecord(index int) GenderPicker {
	return NewRandomPicker(p.seed ^ int64(index))
}

// Augmenter builds augmented examples using a dependency parser, a number
// check and a pronoun table
type Augmenter struct {
	parser    annotate.Parser
	inflector lexicon.Inflector
	table     lexicon.PronounTable
	gender    GenderPicker
}

// New creates an augmenter. A nil picker draws genders from a time-seeded source.
func New(parser annotate.Parser, inflector lexicon.Inflector, table lexicon.PronounTable, gender GenderPicker) *Augmenter {
	if gender == nil {
		gender = NewRandomPicker(rand.Int63())
	}
	return &Augmenter{
		parser:    parser,
		inflector: inflector,
		table:     table,
		gender:    gender,
	}
}

// substitution is the hypothesis split around its replaceable subject span
type substitution struct {
	prefix  []string
	suffix  []string
	pronoun model.Pronoun
}

// Augment appends a pronoun clause to the premise and returns it together
// with the positive hypothesis and any negative hypotheses
func (a *Augmenter) Augment(ctx context.Context, premise, hypothesis string) (*model.AugmentationResult, error) {
	return a.augment(ctx, premise, hypothesis, a.gender)
}

// AugmentRecord augments one dataset record. With a RecordPicker the he/she
// draws depend only on the record index.
func (a *Augmenter) AugmentRecord(ctx context.Context, record model.Record) (*model.AugmentationResult, error) {
	gender := a.gender
	if rp, ok := gender.(RecordPicker); ok {
		gender = rp.ForRecord(record.Index)
	}
	return a.augment(ctx, record.Premise, record.Hypothesis, gender)
}

func (a *Augmenter) augment(ctx context.Context, premise, hypothesis string, gender GenderPicker) (*model.AugmentationResult, error) {
	premise = text.CleanSentence(premise)
	hypothesis = text.CleanSentence(hypothesis)

	sub, err := a.pronounToReplace(ctx, hypothesis, gender)
	if err != nil {
		return nil, err
	}

	clause := text.JoinTokens(join(sub.prefix, string(sub.pronoun), sub.suffix))

	negatives, err := a.falseExamples(ctx, premise, hypothesis, sub)
	if err != nil {
		return nil, err
	}

	return &model.AugmentationResult{
		NewPremise:         premise + " " + clause,
		PositiveHypothesis: text.Capitalize(strings.TrimSpace(hypothesis)),
		NegativeHypotheses: negatives,
		Pronoun:            sub.pronoun,
	}, nil
}

// pronounToReplace finds the single nominal subject of the hypothesis and
// the pronoun that may stand in for it. A malformed parse is a record-level
// failure; any other parser error is returned as is.
func (a *Augmenter) pronounToReplace(ctx context.Context, hypothesis string, gender GenderPicker) (*substitution, error) {
	tokens, err := a.parser.Parse(ctx, hypothesis)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, model.ErrParseFailure) {
			return nil, fmt.Errorf("%w: %w", model.ErrNoUniqueSubject, err)
		}
		return nil, fmt.Errorf("parse hypothesis: %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%w: %w: empty parse", model.ErrNoUniqueSubject, model.ErrParseFailure)
	}

	var subjects []model.Token
	for _, tok := range tokens {
		if tok.Dep == model.DepNominalSubject {
			subjects = append(subjects, tok)
		}
	}
	if len(subjects) != 1 {
		return nil, fmt.Errorf("%w: found %d subjects", model.ErrNoUniqueSubject, len(subjects))
	}
	subject := subjects[0]
	if subject.Index < 0 || subject.Index >= len(tokens) {
		return nil, fmt.Errorf("%w: %w: subject index %d outside %d tokens", model.ErrNoUniqueSubject, model.ErrParseFailure, subject.Index, len(tokens))
	}

	pronoun, err := a.choosePronoun(subject.Text, gender)
	if err != nil {
		return nil, err
	}

	start := subject.Index
	for _, child := range subject.Children {
		if child >= 0 && child < start {
			start = child
		}
	}

	return &substitution{
		prefix:  texts(tokens[:start]),
		suffix:  texts(tokens[subject.Index+1:]),
		pronoun: pronoun,
	}, nil
}

func (a *Augmenter) choosePronoun(subject string, gender GenderPicker) (model.Pronoun, error) {
	if !a.inflector.IsSingular(subject) {
		return model.PronounThey, nil
	}

	pronoun, ok := a.table.Lookup(strings.ToLower(subject))
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrNoPronounMapping, subject)
	}
	if pronoun == model.PronounPerson {
		return gender.Pick(), nil
	}
	return pronoun, nil
}

// falseExamples substitutes premise subjects and objects that agree with
// the chosen pronoun into the hypothesis frame. A malformed premise parse
// yields no negatives.
func (a *Augmenter) falseExamples(ctx context.Context, premise, hypothesis string, sub *substitution) ([]string, error) {
	tokens, err := a.parser.Parse(ctx, premise)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, model.ErrParseFailure) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("parse premise: %w", err)
	}

	lowerHypothesis := strings.ToLower(hypothesis)
	plural := sub.pronoun == model.PronounThey

	examples := []string{}
	for _, tok := range tokens {
		if !isCandidateDep(tok.Dep) {
			continue
		}

		word := tok.Text
		if a.inflector.IsSingular(word) == plural {
			continue
		}

		lower := strings.ToLower(word)
		if strings.Contains(lowerHypothesis, lower) {
			continue
		}

		candidate, ok := a.table.Lookup(lower)
		if !ok || !candidate.CompatibleWith(sub.pronoun) {
			continue
		}

		examples = append(examples, text.JoinTokens(join(sub.prefix, word, sub.suffix)))
	}

	return examples, nil
}

func isCandidateDep(dep string) bool {
	switch dep {
	case model.DepNominalSubject, model.DepDirectObject, model.DepPrepositionalObject:
		return true
	}
	return false
}

func texts(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func join(prefix []string, middle string, suffix []string) []string {
	out := make([]string, 0, len(prefix)+len(suffix)+1)
	out = append(out, prefix...)
	out = append(out, middle)
	return append(out, suffix...)
}
