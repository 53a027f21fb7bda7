package clarify

import (
	"regexp"
	"strings"
)

// A strategy attempts to map a free-form reply onto the pending
// clarifications. It returns a complete index→answer mapping or reports no
// match; a partial guess is never returned, because an ambiguous reply must
// not be silently misassigned.
type strategy func(reply string, items []Item) (map[int]string, bool)

// strategies are tried in order until one produces a mapping.
var strategies = []strategy{
	parseSingleItem,
	parseNumberedLines,
	parseInlineNumbered,
	parseDelimited,
	parseKeywords,
}

// ParseReply maps the user's reply onto the pending clarifications using an
// ordered fallback chain. ok is false when no strategy yields a mapping.
func ParseReply(reply string, items []Item) (map[int]string, bool) {
	reply = strings.TrimSpace(reply)
	if reply == "" || len(items) == 0 {
		return nil, false
	}
	for _, s := range strategies {
		if m, ok := s(reply, items); ok {
			return m, true
		}
	}
	return nil, false
}

// parseSingleItem: with exactly one pending clarification, the whole reply
// is the answer.
func parseSingleItem(reply string, items []Item) (map[int]string, bool) {
	if len(items) != 1 {
		return nil, false
	}
	return map[int]string{0: reply}, true
}

// lineMarkerRE strips a leading "1." / "1)" / "1:" marker.
var lineMarkerRE = regexp.MustCompile(`^\s*\d+\s*[.):]\s*`)

// parseNumberedLines: one answer per line, optionally marked with the item
// number. Requires at least as many non-empty lines as pending items.
func parseNumberedLines(reply string, items []Item) (map[int]string, bool) {
	lines := make([]string, 0, len(items))
	for _, ln := range strings.Split(reply, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) < len(items) {
		return nil, false
	}
	out := make(map[int]string, len(items))
	for i := range items {
		ans := strings.TrimSpace(lineMarkerRE.ReplaceAllString(lines[i], ""))
		if ans == "" {
			return nil, false
		}
		out[i] = ans
	}
	return out, true
}

// inlineMarkerRE finds the "1." / "1)" / "1:" markers of an inline reply.
var inlineMarkerRE = regexp.MustCompile(`(\d+)\s*[.):]\s*`)

// parseInlineNumbered: a single line carrying numbered answers back to back.
// Each answer runs from its marker to the next marker, so answers may start
// with digits ("1. grande 2. 150").
func parseInlineNumbered(reply string, items []Item) (map[int]string, bool) {
	locs := inlineMarkerRE.FindAllStringSubmatchIndex(reply, -1)
	if len(locs) < len(items) {
		return nil, false
	}
	out := make(map[int]string, len(items))
	for i, loc := range locs {
		idx := 0
		for _, r := range reply[loc[2]:loc[3]] {
			idx = idx*10 + int(r-'0')
		}
		idx--
		if idx < 0 || idx >= len(items) {
			return nil, false
		}
		end := len(reply)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		ans := strings.TrimSpace(strings.Trim(reply[loc[1]:end], ",; "))
		if ans == "" {
			return nil, false
		}
		out[idx] = ans
	}
	if len(out) != len(items) {
		return nil, false
	}
	return out, true
}

// parseDelimited: comma/semicolon separated answers; the count must match
// exactly, otherwise assignment would be guesswork.
func parseDelimited(reply string, items []Item) (map[int]string, bool) {
	parts := regexp.MustCompile(`[,;]`).Split(reply, -1)
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) != len(items) {
		return nil, false
	}
	out := make(map[int]string, len(items))
	for i, a := range cleaned {
		out[i] = a
	}
	return out, true
}

// Keyword sets cover both supported languages.
var (
	sizeWordRE  = regexp.MustCompile(`(?i)\b(small|medium|large|extra\s+large|chico|peque[ñn]o|mediano|grande)\b`)
	weightRE    = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:g|gr|gram|grams|gramos?|kg|oz|onzas?|ml|lb)\b`)
	spoonWordRE = regexp.MustCompile(`(?i)\b(teaspoon|tablespoon|tsp|tbsp|cucharada|cucharadita|cdta|cda)\b`)
)

// parseKeywords: last resort, scans the reply once per pending item for a
// type-specific pattern. Every item must find its own hit.
func parseKeywords(reply string, items []Item) (map[int]string, bool) {
	out := make(map[int]string, len(items))
	for i, it := range items {
		var m string
		switch it.Type {
		case TypeMissingSize:
			m = sizeWordRE.FindString(reply)
		case TypeMissingWeight:
			m = weightRE.FindString(reply)
		case TypeAmbiguousUnit:
			m = spoonWordRE.FindString(reply)
		default:
			return nil, false
		}
		if m == "" {
			return nil, false
		}
		out[i] = strings.TrimSpace(m)
	}
	return out, true
}
