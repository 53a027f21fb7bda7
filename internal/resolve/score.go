package resolve

import "strings"

// Additive bonus constants for the composite score. Triggered by exact,
// normalized-exact, prefix, and substring matches respectively. Empirically
// chosen alongside the acceptance threshold; see config.
const (
	exactMatchBonus      = 10.0
	normalizedExactBonus = 5.0
	startsWithBonus      = 2.0
	containsBonus        = 1.0
)

// Dice computes the Sørensen–Dice coefficient over character bigrams of the
// two strings, in [0,1]. Strings shorter than two runes only score on exact
// equality.
func Dice(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	ab := bigrams(a)
	bb := bigrams(b)
	if len(ab) == 0 || len(bb) == 0 {
		return 0
	}
	inter := 0
	for g, n := range ab {
		if m, ok := bb[g]; ok {
			if m < n {
				inter += m
			} else {
				inter += n
			}
		}
	}
	total := 0
	for _, n := range ab {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2 * float64(inter) / float64(total)
}

func bigrams(s string) map[string]int {
	rs := []rune(s)
	if len(rs) < 2 {
		return nil
	}
	out := make(map[string]int, len(rs)-1)
	for i := 0; i+1 < len(rs); i++ {
		out[string(rs[i:i+2])]++
	}
	return out
}

// CompositeScore blends string similarity with the partition's static
// priority and the fixed additive match bonuses:
//
//	score = similarity × priority + bonuses
//
// It is a pure function by design so the ranking logic can be tested without
// any catalog traffic.
func CompositeScore(similarity, priority float64, exact, normalizedExact, prefix, substring bool) float64 {
	score := similarity * priority
	if exact {
		score += exactMatchBonus
	}
	if normalizedExact {
		score += normalizedExactBonus
	}
	if prefix {
		score += startsWithBonus
	}
	if substring {
		score += containsBonus
	}
	return score
}

// matchFlags derives the four bonus triggers for a candidate name against
// the raw and normalized query forms. The flags are mutually exclusive;
// only the strongest applicable one is set, so a candidate collects at
// most one bonus.
func matchFlags(name, rawQuery, normQuery string) (exact, normalizedExact, prefix, substring bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	rawLower := strings.ToLower(strings.TrimSpace(rawQuery))

	exact = lower == rawLower && rawLower != ""
	normalizedExact = !exact && Normalize(name) == normQuery && normQuery != ""
	if normQuery != "" && !exact && !normalizedExact {
		prefix = strings.HasPrefix(lower, normQuery)
		substring = !prefix && strings.Contains(lower, normQuery)
	}
	return
}
