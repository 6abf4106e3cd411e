// Package tokenizer normalizes raw text into the token stream shared by
// the document index and the scorer.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenLength = 3

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"for": {}, "is": {}, "it": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "from": {}, "with": {}, "by": {}, "of": {}, "how": {},
	"do": {}, "i": {}, "that": {}, "this": {}, "there": {},
	"what": {}, "where": {},
}

// Tokenize lower-cases text, treats every character that is not a letter
// or digit as a separator, and returns the remaining tokens with stop
// words and tokens shorter than three characters removed. Empty input
// yields nil.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) < minTokenLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens = append(tokens, word)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// TermFrequencies counts occurrences of each token.
func TermFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}
	return freq
}
