// Package align locates the ambiguous reference of a hypothesis and the
// premise token it stands for.
package align

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/text"
)

// MaxSlack is the widest ambiguous span, in tokens minus one, tried by FindOverlap
const MaxSlack = 4

// Aligner matches hypothesis context against a premise. Debug, when set,
// receives a line for every rejected candidate.
type Aligner struct {
	Debug io.Writer
}

// FindOverlap aligns hypothesis against premise with a silent Aligner
func FindOverlap(premise, hypothesis string) (*model.OverlapResult, error) {
	return (&Aligner{}).FindOverlap(premise, hypothesis)
}

// FindPremiseRef locates the premise token between query1 and query2 with a silent Aligner
func FindPremiseRef(premise, query1, query2 string) (int, string, error) {
	return (&Aligner{}).FindPremiseRef(premise, query1, query2)
}

// FindOverlap tries every window of the hypothesis, narrowest first and then
// left to right, as the ambiguous span. The tokens around the window must
// both occur in the premise and FindPremiseRef must resolve them; the first
// window that does wins.
func (a *Aligner) FindOverlap(premise, hypothesis string) (*model.OverlapResult, error) {
	prem := text.Tokenize(premise)
	hyp := text.Tokenize(hypothesis)
	premiseText := prem.String()

	for slack := 0; slack <= MaxSlack; slack++ {
		for ind := 0; ind < hyp.Len()-slack; ind++ {
			end := ind + slack + 1
			query1 := hyp.NormalizedText(0, ind)
			query2 := hyp.NormalizedText(end, hyp.Len())

			if !strings.Contains(premiseText, query1) || !strings.Contains(premiseText, query2) {
				continue
			}

			refIndex, refToken, err := a.findPremiseRef(prem, strings.TrimSpace(query1), strings.TrimSpace(query2))
			if err != nil {
				continue
			}

			return &model.OverlapResult{
				PremiseRefIndex:    refIndex,
				PremiseRefToken:    refToken,
				HypothesisRefIndex: ind,
				HypothesisRefSpan:  hyp.LiteralText(ind, end),
				Prefix:             strings.TrimSpace(hyp.LiteralText(0, ind)),
				Suffix:             strings.TrimSpace(hyp.LiteralText(end, hyp.Len())),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: no window of %q found in premise", model.ErrAlignmentFailure, hypothesis)
}

// FindPremiseRef returns the index and literal text of the premise token
// that the hypothesis reference replaces, given the normalized hypothesis
// text before (query1) and after (query2) the reference
func (a *Aligner) FindPremiseRef(premise, query1, query2 string) (int, string, error) {
	return a.findPremiseRef(text.Tokenize(premise), query1, query2)
}

func (a *Aligner) findPremiseRef(prem text.Tokenization, query1, query2 string) (int, string, error) {
	q1 := splitQuery(query1)
	q2 := splitQuery(query2)

	q1Index, q2Index := -1, -1
	for ind := 0; ind < prem.Len(); ind++ {
		suffix := prem.NormalizedText(ind, prem.Len())

		if strings.Contains(suffix, query1) {
			q1Index = ind
		}
		if strings.Contains(suffix, query2) {
			q2Index = ind
		}

		// both queries seen and neither reaches this far
		if q1Index != ind && q2Index != ind && q1Index != -1 && q2Index != -1 {
			break
		}
	}

	if len(q1) > 0 && !tokensMatch(prem.Normalized, q1Index, q1) {
		return a.reject("query %q not at premise token %d", query1, q1Index)
	}
	if len(q2) > 0 && !tokensMatch(prem.Normalized, q2Index, q2) {
		return a.reject("query %q not at premise token %d", query2, q2Index)
	}

	if len(q1) > 1 && len(q2) > 0 && q1Index > q2Index {
		return a.reject("query %q at %d follows query %q at %d", query1, q1Index, query2, q2Index)
	}

	var ref int
	if text.IsArticle(query1) || len(q2) > 0 {
		ref = q2Index - 1
	} else {
		ref = q1Index + len(q1)
		if ref >= 0 && ref < prem.Len() && isSkippable(prem.Literal[ref]) {
			ref++
		}
	}

	if ref < 0 || ref >= prem.Len() {
		return a.reject("reference index %d outside premise of %d tokens", ref, prem.Len())
	}

	return ref, prem.Literal[ref], nil
}

func (a *Aligner) reject(format string, args ...interface{}) (int, string, error) {
	msg := fmt.Sprintf(format, args...)
	if a.Debug != nil {
		_, _ = fmt.Fprintf(a.Debug, "  align: %s\n", msg)
	}
	return -1, "", fmt.Errorf("%w: %s", model.ErrAlignmentFailure, msg)
}

func splitQuery(query string) []string {
	if query == "" {
		return nil
	}
	return strings.Split(query, " ")
}

// tokensMatch compares query against tokens starting at start, up to the
// shorter of the two
func tokensMatch(tokens []string, start int, query []string) bool {
	if start < 0 || start >= len(tokens) {
		return false
	}
	for i, q := range query {
		if start+i >= len(tokens) {
			break
		}
		if tokens[start+i] != q {
			return false
		}
	}
	return true
}

func isSkippable(token string) bool {
	return text.IsArticle(token) || token == "of"
}
