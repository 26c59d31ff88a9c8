// Package tokenizer provides text preprocessing for the search engine.
// It lower-cases input, splits on non-alphanumeric boundaries and removes
// English stop-words. Terms are not stemmed.
package tokenizer

import (
	"strings"
	"unicode"
)

// stopWords is the NLTK English stop-word list.
var stopWords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "myself": {}, "we": {}, "our": {}, "ours": {},
	"ourselves": {}, "you": {}, "you're": {}, "you've": {}, "you'll": {},
	"you'd": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},
	"he": {}, "him": {}, "his": {}, "himself": {}, "she": {}, "she's": {},
	"her": {}, "hers": {}, "herself": {}, "it": {}, "it's": {}, "its": {},
	"itself": {}, "they": {}, "them": {}, "their": {}, "theirs": {},
	"themselves": {}, "what": {}, "which": {}, "who": {}, "whom": {},
	"this": {}, "that": {}, "that'll": {}, "these": {}, "those": {}, "am": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "having": {}, "do": {},
	"does": {}, "did": {}, "doing": {}, "a": {}, "an": {}, "the": {},
	"and": {}, "but": {}, "if": {}, "or": {}, "because": {}, "as": {},
	"until": {}, "while": {}, "of": {}, "at": {}, "by": {}, "for": {},
	"with": {}, "about": {}, "against": {}, "between": {}, "into": {},
	"through": {}, "during": {}, "before": {}, "after": {}, "above": {},
	"below": {}, "to": {}, "from": {}, "up": {}, "down": {}, "in": {},
	"out": {}, "on": {}, "off": {}, "over": {}, "under": {}, "again": {},
	"further": {}, "then": {}, "once": {}, "here": {}, "there": {}, "when": {},
	"where": {}, "why": {}, "how": {}, "all": {}, "any": {}, "both": {},
	"each": {}, "few": {}, "more": {}, "most": {}, "other": {}, "some": {},
	"such": {}, "no": {}, "nor": {}, "not": {}, "only": {}, "own": {},
	"same": {}, "so": {}, "than": {}, "too": {}, "very": {}, "s": {}, "t": {},
	"can": {}, "will": {}, "just": {}, "don": {}, "don't": {}, "should": {},
	"should've": {}, "now": {}, "d": {}, "ll": {}, "m": {}, "o": {}, "re": {},
	"ve": {}, "y": {}, "ain": {}, "aren": {}, "aren't": {}, "couldn": {},
	"couldn't": {}, "didn": {}, "didn't": {}, "doesn": {}, "doesn't": {},
	"hadn": {}, "hadn't": {}, "hasn": {}, "hasn't": {}, "haven": {},
	"haven't": {}, "isn": {}, "isn't": {}, "ma": {}, "mightn": {},
	"mightn't": {}, "mustn": {}, "mustn't": {}, "needn": {}, "needn't": {},
	"shan": {}, "shan't": {}, "shouldn": {}, "shouldn't": {}, "wasn": {},
	"wasn't": {}, "weren": {}, "weren't": {}, "won": {}, "won't": {},
	"wouldn": {}, "wouldn't": {},
}

// Token represents a single normalised term and its position in the
// filtered term sequence.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into lowercased Tokens with stop-words removed.
func Tokenize(text string) []Token {
	words := split(text)
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if IsStopWord(word) {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// Preprocess returns the ordered index terms of text.
func Preprocess(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// IsStopWord reports whether word (already lowercased) is a stop-word.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// StopWordCount returns the size of the stop-word set.
func StopWordCount() int {
	return len(stopWords)
}

func split(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
