package catalog

import (
	"regexp"
	"strings"
)

// gramSynonyms are the unit spellings treated as a request for plain grams,
// in both supported languages.
var gramSynonyms = map[string]struct{}{
	"g": {}, "gm": {}, "gms": {}, "gram": {}, "grams": {},
	"gramo": {}, "gramos": {}, "gr": {},
}

// numberGramRE matches measure names like "100 g" or "30g".
var numberGramRE = regexp.MustCompile(`^\d+(\.\d+)?\s*g$`)

// SyntheticGram is the fallback measure used when a food declares nothing
// usable: one unit equals one gram.
var SyntheticGram = Measure{ID: "", Name: "g", Grams: 1}

// ResolveMeasure picks a concrete measure for the requested unit string and
// reports whether the caller's quantity must be treated as a raw gram total
// (rawGrams=true) instead of being multiplied by the measure's gram value.
//
// The asymmetry matters: the catalog's write API always wants a normalized
// gram total, and the declared measures are not interchangeable with
// arbitrary gram counts. Resolution attempts, in order:
//
//  1. exact case-insensitive name match, used directly;
//  2. for gram-family requests, a measure literally named "g";
//  3. for gram-family requests, a measure named like "100 g" or ending in
//     "g" (anything containing "serving" excluded), used with rawGrams set;
//  4. for gram-family requests, the first declared measure, rawGrams set;
//  5. for other requests, substring containment in either direction;
//  6. failing all of the above, the synthetic 1-gram measure.
func ResolveMeasure(measures []Measure, unit string) (Measure, bool) {
	want := strings.ToLower(strings.TrimSpace(unit))

	// 1. Exact name match.
	for _, m := range measures {
		if strings.EqualFold(strings.TrimSpace(m.Name), want) && want != "" {
			return m, false
		}
	}

	if _, isGram := gramSynonyms[want]; isGram {
		// 2. A measure literally named "g" is the gram measure itself.
		for _, m := range measures {
			if strings.EqualFold(strings.TrimSpace(m.Name), "g") {
				return m, false
			}
		}
		// 3. Gram-denominated measure names carry a fixed gram count in the
		// name; the user's quantity replaces it outright.
		for _, m := range measures {
			name := strings.ToLower(strings.TrimSpace(m.Name))
			if strings.Contains(name, "serving") {
				continue
			}
			if numberGramRE.MatchString(name) || strings.HasSuffix(name, "g") {
				return m, true
			}
		}
		// 4. Last resort for gram requests.
		if len(measures) > 0 {
			return measures[0], true
		}
		return SyntheticGram, false
	}

	// 5. Substring containment in either direction.
	if want != "" {
		for _, m := range measures {
			name := strings.ToLower(strings.TrimSpace(m.Name))
			if name == "" {
				continue
			}
			if strings.Contains(name, want) || strings.Contains(want, name) {
				return m, false
			}
		}
	}

	// 6. Nothing matched.
	return SyntheticGram, false
}

// TotalGrams computes the normalized gram total for a resolved quantity.
func TotalGrams(quantity float64, m Measure, rawGrams bool) float64 {
	if rawGrams {
		return quantity
	}
	return quantity * m.Grams
}
