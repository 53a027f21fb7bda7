// Package clarify converts the external interpreter's raw clarification
// output into typed items, formats them as user-facing questions, and parses
// the user's free-form reply back into per-item answers.
package clarify

import (
	"strings"

	"github.com/tbourn/go-meal-agent/internal/interpreter"
)

// Type is the fixed set of clarification kinds the dialogue understands.
type Type string

const (
	TypeMissingSize   Type = "MISSING_SIZE"
	TypeMissingWeight Type = "MISSING_WEIGHT"
	TypeAmbiguousUnit Type = "AMBIGUOUS_UNIT"
	TypeFoodNotFound  Type = "FOOD_NOT_FOUND"
)

// Item is one pending clarification. OriginalTerm preserves the
// source-language substring the question maps back to; it keys the
// preference memory so a learned answer survives rephrasing.
type Item struct {
	Type         Type
	ItemName     string
	Question     string
	OriginalTerm string
}

// NormalizeType maps the interpreter's free-form type label onto the fixed
// Type set. Separators are stripped and the label uppercased before
// comparison, so "missing-size", "Missing_Size" and "MISSINGSIZE" all
// coincide. Unknown labels default to TypeMissingWeight rather than failing:
// a weight question is the safest generic fallback.
func NormalizeType(label string) Type {
	var b strings.Builder
	for _, r := range strings.ToUpper(label) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	switch b.String() {
	case "MISSINGSIZE":
		return TypeMissingSize
	case "MISSINGWEIGHT":
		return TypeMissingWeight
	case "AMBIGUOUSUNIT":
		return TypeAmbiguousUnit
	case "FOODNOTFOUND":
		return TypeFoodNotFound
	default:
		return TypeMissingWeight
	}
}

// FromRaw converts the interpreter's raw clarifications into typed items.
func FromRaw(raw []interpreter.RawClarification) []Item {
	out := make([]Item, 0, len(raw))
	for _, r := range raw {
		out = append(out, Item{
			Type:         NormalizeType(r.Type),
			ItemName:     r.ItemName,
			Question:     r.Question,
			OriginalTerm: r.ItemName,
		})
	}
	return out
}
