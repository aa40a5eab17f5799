// Package text holds the string normalisation shared by the augmenter and
// the aligner: whitespace cleaning, punctuation stripping and the dual
// literal/normalized tokenization.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Punctuation is the ASCII punctuation set stripped during normalisation
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var spaceRun = regexp.MustCompile(` +`)

// articles are dropped from the front of a reference before cluster matching
var articles = map[string]bool{"the": true, "a": true, "an": true}

// CleanSentence composes the sentence to NFC and collapses runs of spaces.
// It is idempotent.
func CleanSentence(s string) string {
	return spaceRun.ReplaceAllString(norm.NFC.String(s), " ")
}

// StripPunctuation removes every ASCII punctuation character from s
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && strings.ContainsRune(Punctuation, r) {
			return -1
		}
		return r
	}, s)
}

// Normalize lowercases s and strips punctuation
func Normalize(s string) string {
	return StripPunctuation(strings.ToLower(s))
}

// IsPunctuation reports whether a token is a run of the punctuation set and
// should attach to the previous token without a space
func IsPunctuation(token string) bool {
	return token != "" && strings.Contains(Punctuation, token)
}

// IsArticle reports whether a lowercase word is the, a or an
func IsArticle(word string) bool {
	return articles[word]
}

// Capitalize upper-cases the first rune of s
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// JoinTokens rebuilds a sentence from parser tokens: tokens are separated by
// single spaces except before punctuation, and the first letter is capitalised
func JoinTokens(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		if IsPunctuation(tok) && b.Len() > 0 {
			s := strings.TrimSuffix(b.String(), " ")
			b.Reset()
			b.WriteString(s)
		}
		b.WriteString(tok)
		b.WriteString(" ")
	}
	return Capitalize(strings.TrimSpace(b.String()))
}

// RemoveArticle drops leading articles from a normalized reference. A lone
// article is kept so the query never becomes empty.
func RemoveArticle(s string) string {
	words := strings.Fields(s)
	for len(words) > 1 && IsArticle(words[0]) {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
