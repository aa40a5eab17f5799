package text

import "strings"

// Tokenization is a sentence split on single spaces, kept in two aligned
// forms. Literal[i] and Normalized[i] always describe the same token.
type Tokenization struct {
	Literal    []string
	Normalized []string
}

// Tokenize splits s on single spaces. Runs of spaces yield empty tokens, so
// indices stay consistent with any other single-space split of s.
func Tokenize(s string) Tokenization {
	literal := strings.Split(s, " ")
	normalized := make([]string, len(literal))
	for i, tok := range literal {
		normalized[i] = Normalize(tok)
	}
	return Tokenization{Literal: literal, Normalized: normalized}
}

// Len returns the number of tokens
func (t Tokenization) Len() int {
	return len(t.Literal)
}

// NormalizedText joins normalized tokens in [from, to) with single spaces
func (t Tokenization) NormalizedText(from, to int) string {
	return joinRange(t.Normalized, from, to)
}

// LiteralText joins literal tokens in [from, to) with single spaces
func (t Tokenization) LiteralText(from, to int) string {
	return joinRange(t.Literal, from, to)
}

// String returns the whole normalized sentence
func (t Tokenization) String() string {
	return strings.Join(t.Normalized, " ")
}

func joinRange(tokens []string, from, to int) string {
	from, to = clamp(from, len(tokens)), clamp(to, len(tokens))
	if from >= to {
		return ""
	}
	return strings.Join(tokens[from:to], " ")
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
