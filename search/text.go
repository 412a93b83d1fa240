package search

import "strings"

// Stop words ignored when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true, "why": true, "does": true,
}

// terms lowercases the words of text, trims surrounding punctuation and drops stop words.
func terms(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			out = append(out, cleaned)
		}
	}
	return out
}

// containsAllQueryWords reports whether every query term appears in document.
// A query with no terms never matches.
func containsAllQueryWords(document, query string) bool {
	queryTerms := terms(query)
	if len(queryTerms) == 0 {
		return false
	}

	present := make(map[string]bool)
	for _, word := range terms(document) {
		present[word] = true
	}

	for _, term := range queryTerms {
		if !present[term] {
			return false
		}
	}
	return true
}
