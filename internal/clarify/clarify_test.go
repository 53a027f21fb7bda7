package clarify

import (
	"testing"

	"github.com/tbourn/go-meal-agent/internal/interpreter"
)

func TestNormalizeType(t *testing.T) {
	cases := map[string]Type{
		"missing_size":   TypeMissingSize,
		"Missing-Size":   TypeMissingSize,
		"MISSINGSIZE":    TypeMissingSize,
		"missing weight": TypeMissingWeight,
		"ambiguous_unit": TypeAmbiguousUnit,
		"food_not_found": TypeFoodNotFound,
		"something_else": TypeMissingWeight, // unknown labels default to weight
		"":               TypeMissingWeight,
	}
	for in, want := range cases {
		if got := NormalizeType(in); got != want {
			t.Fatalf("NormalizeType(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestFromRaw_PreservesOriginalTerm(t *testing.T) {
	items := FromRaw([]interpreter.RawClarification{
		{Type: "missing_size", ItemName: "Egg", Question: "What size?"},
	})
	if len(items) != 1 {
		t.Fatalf("len = %d", len(items))
	}
	if items[0].Type != TypeMissingSize || items[0].OriginalTerm != "Egg" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestFormatQuestions_SingleIsVerbatim(t *testing.T) {
	got := FormatQuestions([]Item{{Question: "What size was the egg?"}})
	if got != "What size was the egg?" {
		t.Fatalf("got %q; want verbatim question", got)
	}
}

func TestFormatQuestions_MultipleAreNumbered(t *testing.T) {
	got := FormatQuestions([]Item{
		{Question: "What size was the egg?"},
		{Question: "How much rice?"},
	})
	want := "1. What size was the egg?\n2. How much rice?"
	if got != want {
		t.Fatalf("got %q; want %q", got, want)
	}
}

func TestParseReply_SingleItemTakesWholeReply(t *testing.T) {
	items := []Item{{Type: TypeMissingSize, ItemName: "Egg"}}
	m, ok := ParseReply("it was a large one, maybe extra large", items)
	if !ok || m[0] != "it was a large one, maybe extra large" {
		t.Fatalf("got %v ok=%v", m, ok)
	}
}

func TestParseReply_NumberedLines(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize, ItemName: "Egg"},
		{Type: TypeMissingWeight, ItemName: "Rice"},
	}
	m, ok := ParseReply("1. grande\n2. 200g", items)
	if !ok {
		t.Fatalf("expected mapping")
	}
	if m[0] != "grande" || m[1] != "200g" {
		t.Fatalf("got %v", m)
	}
}

func TestParseReply_PlainLinesWithoutMarkers(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeMissingWeight},
	}
	m, ok := ParseReply("large\n150 g", items)
	if !ok || m[0] != "large" || m[1] != "150 g" {
		t.Fatalf("got %v ok=%v", m, ok)
	}
}

func TestParseReply_InlineNumbered(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeAmbiguousUnit},
	}
	m, ok := ParseReply("1. grande 2. cucharada", items)
	if !ok || m[0] != "grande" || m[1] != "cucharada" {
		t.Fatalf("got %v ok=%v", m, ok)
	}
}

func TestParseReply_InlineNumberedDigitAnswers(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeMissingWeight},
	}
	// Answers themselves may start with digits; each one runs up to the
	// next marker.
	m, ok := ParseReply("1. grande 2. 150 g", items)
	if !ok || m[0] != "grande" || m[1] != "150 g" {
		t.Fatalf("got %v ok=%v", m, ok)
	}

	m, ok = ParseReply("1) 2 cucharadas 2) grande", items)
	if !ok || m[0] != "2 cucharadas" || m[1] != "grande" {
		t.Fatalf("got %v ok=%v", m, ok)
	}
}

func TestParseReply_CommaDelimitedExactCount(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeMissingWeight},
	}
	m, ok := ParseReply("medium, 100g", items)
	if !ok || m[0] != "medium" || m[1] != "100g" {
		t.Fatalf("got %v ok=%v", m, ok)
	}
}

func TestParseReply_KeywordFallback(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeMissingWeight},
	}
	// No line or delimiter structure: two answers mixed into prose.
	m, ok := ParseReply("the egg was large and I had about 150g of rice", items)
	if !ok {
		t.Fatalf("expected keyword mapping")
	}
	if m[0] != "large" || m[1] != "150g" {
		t.Fatalf("got %v", m)
	}
}

func TestParseReply_AmbiguousYieldsNothing(t *testing.T) {
	items := []Item{
		{Type: TypeMissingSize},
		{Type: TypeMissingWeight},
	}
	if m, ok := ParseReply("no idea really just log whatever", items); ok {
		t.Fatalf("ambiguous reply must not map, got %v", m)
	}
}

func TestParseReply_Empty(t *testing.T) {
	if _, ok := ParseReply("", []Item{{Type: TypeMissingSize}}); ok {
		t.Fatalf("empty reply must not map")
	}
	if _, ok := ParseReply("large", nil); ok {
		t.Fatalf("no pending items must not map")
	}
}
