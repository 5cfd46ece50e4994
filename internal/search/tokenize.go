package search

import (
	"strings"
	"unicode"
)

// englishStopwords is the stopword list applied during tokenization. Terms in
// this set never enter the vocabulary.
var englishStopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all am an and any are as at be because
		been before being below between both but by can cannot could did do does
		doing down during each few for from further had has have having he her
		here hers herself him himself his how i if in into is it its itself just
		me more most my myself no nor not now of off on once only or other our
		ours ourselves out over own same she should so some such than that the
		their theirs them themselves then there these they this those through to
		too under until up very was we were what when where which while who whom
		why will with would you your yours yourself yourselves`) {
		englishStopwords[w] = struct{}{}
	}
}

// tokenize lowercases the text, splits it on non-alphanumeric runes, drops
// stopwords and single-character terms, and emits unigrams plus bigrams. The
// same tokenizer serves both index build and query so a query term can only
// match what indexing produced.
func tokenize(text string) []string {
	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(words)*2)
	tokens = append(tokens, words...)
	for i := 0; i+1 < len(words); i++ {
		tokens = append(tokens, words[i]+" "+words[i+1])
	}
	return tokens
}

func splitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := englishStopwords[f]; stop {
			continue
		}
		words = append(words, f)
	}
	return words
}
