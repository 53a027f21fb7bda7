// Package resolve implements the food-resolution engine: it normalizes a
// food query, fans out to the catalog partitions concurrently, scores every
// hit with a deterministic composite formula, and ranks the merged candidate
// list. Scoring is kept in pure functions so it is unit-testable apart from
// the network calls that produce its inputs.
package resolve

import (
	"regexp"
	"strings"
)

// Connective words dropped from queries before matching, in both supported
// languages. The list is deliberately small: aggressive stop-wording erases
// food names like "pan con queso".
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "with": {}, "and": {},
	"de": {}, "del": {}, "la": {}, "el": {}, "las": {}, "los": {},
	"un": {}, "una": {}, "con": {}, "y": {},
}

var nonWordRE = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// IsStopWord reports whether w is one of the connective words Normalize
// drops. Alias detection uses it to step over connectives in raw text.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// Normalize lowercases the query, strips punctuation, removes connective
// stop words, and collapses whitespace.
func Normalize(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = nonWordRE.ReplaceAllString(q, " ")
	fields := strings.Fields(q)
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		// Nothing left after filtering; fall back to the raw tokens.
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}
