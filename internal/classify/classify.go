// Package classify labels a WNLI pair by checking whether the coreference
// resolver puts the hypothesis reference in the same cluster as the premise
// pronoun.
package classify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/text"
)

// Classifier predicts entailment from coreference clusters
type Classifier struct {
	resolver annotate.Resolver
	debug    io.Writer
}

// New creates a classifier. debug may be nil.
func New(resolver annotate.Resolver, debug io.Writer) *Classifier {
	return &Classifier{resolver: resolver, debug: debug}
}

// PredictLabel resolves premise and reports Entailment when the cluster of
// the premise token refIndex/refToken mentions refSpan. Resolver failures are
// returned as is; everything else that prevents a decision is a record-level
// error.
func (c *Classifier) PredictLabel(ctx context.Context, premise string, refIndex int, refToken, refSpan string) (model.Label, error) {
	doc, err := c.resolver.Resolve(ctx, premise)
	if err != nil {
		return model.Majority, fmt.Errorf("resolve premise: %w", err)
	}

	if doc == nil || len(doc.Clusters) == 0 {
		c.debugf("No coreference detected")
		return model.Majority, fmt.Errorf("%w: no clusters", model.ErrCoreferenceUnavailable)
	}

	// resolver tokens drift from whitespace tokens; scan forward for the reference
	want := text.Normalize(refToken)
	pos := refIndex
	if pos < 0 {
		pos = 0
	}
	for ; pos < len(doc.Tokens); pos++ {
		if text.Normalize(doc.Tokens[pos]) == want {
			break
		}
	}
	if pos >= len(doc.Tokens) {
		c.debugf("Resolver index went past the end of the premise looking for %q", refToken)
		return model.Majority, fmt.Errorf("%w: %q not found from token %d", model.ErrTokenizationDrift, refToken, refIndex)
	}

	clusters := doc.ClustersOf(pos)
	if len(clusters) == 0 {
		c.debugf("Token %q not in any cluster", refToken)
		return model.Majority, fmt.Errorf("%w: %q at %d not in any cluster", model.ErrCoreferenceUnavailable, refToken, pos)
	}
	cluster := clusters[0]

	query := text.RemoveArticle(text.Normalize(refSpan))
	c.debugf("Query: %s", query)
	c.debugf("Cluster: %s", describe(doc, cluster))

	if strings.Contains(text.Normalize(mentionText(doc, cluster.Main)), query) {
		return model.Entailment, nil
	}
	for _, m := range cluster.Mentions {
		if strings.Contains(text.Normalize(mentionText(doc, m)), query) {
			return model.Entailment, nil
		}
	}

	return model.NotEntailment, nil
}

func (c *Classifier) debugf(format string, args ...interface{}) {
	if c.debug == nil {
		return
	}
	_, _ = fmt.Fprintf(c.debug, format+"\n", args...)
}

func mentionText(doc *model.Document, m model.Mention) string {
	if m.Text != "" {
		return m.Text
	}
	if m.Start < 0 || m.End > len(doc.Tokens) || m.Start >= m.End {
		return ""
	}
	return strings.Join(doc.Tokens[m.Start:m.End], " ")
}

func describe(doc *model.Document, cluster model.Cluster) string {
	mentions := make([]string, len(cluster.Mentions))
	for i, m := range cluster.Mentions {
		mentions[i] = mentionText(doc, m)
	}
	return fmt.Sprintf("%s: [%s]", mentionText(doc, cluster.Main), strings.Join(mentions, ", "))
}
