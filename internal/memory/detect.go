package memory

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tbourn/go-meal-agent/internal/domain"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// detectIn finds each alias inside text. Alias terms are stored in
// normalized form, so matching runs over word windows: the text is split
// into words and a window matches when its significant words equal the
// alias tokens in sequence, with connective stop words allowed in between.
// "arroz pollo" therefore hits "arroz con pollo" in the raw text. Aliases
// are tried longest term first so short terms never shadow longer ones,
// a hit overlapping an already-accepted hit is skipped, and hits come
// back in order of appearance.
func detectIn(text string, aliases []domain.FoodAlias) []Detection {
	if text == "" || len(aliases) == 0 {
		return nil
	}
	words := splitWords(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}

	type keyedAlias struct {
		alias  domain.FoodAlias
		tokens []string
	}
	terms := make([]keyedAlias, 0, len(aliases))
	for _, a := range aliases {
		toks := strings.Fields(resolve.Normalize(a.Term))
		if len(toks) == 0 {
			continue
		}
		terms = append(terms, keyedAlias{alias: a, tokens: toks})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if len(terms[i].tokens) != len(terms[j].tokens) {
			return len(terms[i].tokens) > len(terms[j].tokens)
		}
		return len(terms[i].alias.Term) > len(terms[j].alias.Term)
	})

	var out []Detection
	for _, k := range terms {
		for s := range words {
			end, ok := matchTokensAt(words, s, k.tokens)
			if !ok {
				continue
			}
			if overlapsAny(out, words[s].start, end) {
				continue
			}
			out = append(out, Detection{
				Term:     k.alias.Term,
				Position: words[s].start,
				Length:   end - words[s].start,
				Alias:    k.alias,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// textWord is one letter/digit run in the scanned text with its byte span.
type textWord struct {
	start, end int
	text       string
}

func splitWords(lower string) []textWord {
	var out []textWord
	start := -1
	for i, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, textWord{start: start, end: i, text: lower[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, textWord{start: start, end: len(lower), text: lower[start:]})
	}
	return out
}

// matchTokensAt matches the token sequence against words starting at s.
// Stop words between tokens are stepped over; any other mismatch fails.
// On success it returns the byte offset just past the last matched word.
func matchTokensAt(words []textWord, s int, tokens []string) (int, bool) {
	if words[s].text != tokens[0] {
		return 0, false
	}
	end := words[s].end
	ti := 1
	for k := s + 1; ti < len(tokens) && k < len(words); k++ {
		switch {
		case words[k].text == tokens[ti]:
			end = words[k].end
			ti++
		case resolve.IsStopWord(words[k].text):
			// connective between alias tokens
		default:
			return 0, false
		}
	}
	if ti < len(tokens) {
		return 0, false
	}
	return end, true
}

func overlapsAny(hits []Detection, start, end int) bool {
	for _, h := range hits {
		if start < h.Position+h.Length && h.Position < end {
			return true
		}
	}
	return false
}

// ApplyDetections substitutes each detected term with its resolved food name
// so the interpreter is not asked to disambiguate vocabulary the user has
// already taught the system.
func ApplyDetections(text string, hits []Detection) string {
	if len(hits) == 0 {
		return text
	}
	sorted := make([]Detection, len(hits))
	copy(sorted, hits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	var b strings.Builder
	last := 0
	for _, h := range sorted {
		if h.Position < last || h.Position+h.Length > len(text) {
			continue
		}
		b.WriteString(text[last:h.Position])
		b.WriteString(h.Alias.FoodName)
		last = h.Position + h.Length
	}
	b.WriteString(text[last:])
	return b.String()
}

// MatchItem maps an interpreter-produced item name back onto one of the
// detected aliases, trying strategies in descending confidence: substring
// match of the normalized name against the alias term, substring match
// against the resolved food name, then significant-word overlap (words
// longer than two runes).
func MatchItem(itemName string, hits []Detection) *Detection {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return nil
	}

	norm := resolve.Normalize(name)
	for i := range hits {
		term := resolve.Normalize(hits[i].Term)
		if term == "" {
			continue
		}
		if strings.Contains(norm, term) || strings.Contains(term, norm) {
			return &hits[i]
		}
	}

	for i := range hits {
		resolved := strings.ToLower(hits[i].Alias.FoodName)
		if resolved != "" && (strings.Contains(name, resolved) || strings.Contains(resolved, name)) {
			return &hits[i]
		}
	}

	nameWords := significantWords(name)
	for i := range hits {
		for w := range significantWords(strings.ToLower(hits[i].Alias.FoodName)) {
			if _, ok := nameWords[w]; ok {
				return &hits[i]
			}
		}
	}
	return nil
}

func significantWords(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) > 2 {
			out[w] = struct{}{}
		}
	}
	return out
}
