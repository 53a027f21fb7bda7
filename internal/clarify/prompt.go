package clarify

import (
	"fmt"
	"strings"
)

// FormatQuestions builds the single user-facing prompt for a clarification
// round. A lone clarification is emitted verbatim; multiple questions are
// numbered so the reply parser can map answers back by position.
func FormatQuestions(items []Item) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0].Question
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, it.Question)
	}
	return b.String()
}
