// Package interpreter consumes the external text-interpretation boundary:
// the model that turns a free-text meal description (plus accumulated
// conversation history) into a structured item list or a set of
// clarification questions. Only the boundary contract lives here; the
// dialogue logic that reacts to it is in the dialog package.
package interpreter

import (
	"errors"
	"time"
)

// ErrUnparseable reports a structurally broken interpreter response. It is a
// recoverable failure: the conversation returns to the description-awaiting
// state with a retry prompt, never a session teardown.
var ErrUnparseable = errors.New("interpreter response unparseable")

// DateLayout is the timestamp format the interpreter emits.
const DateLayout = "2006-01-02T15:04:05"

// Item is one structured food mention: "200 g chicken" becomes
// {Quantity: 200, Unit: "g", Name: "chicken"}.
type Item struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Name     string  `json:"name"`
}

// RawClarification is one question the interpreter needs answered before the
// description is unambiguous. Type is a free-form label normalized by the
// clarify package.
type RawClarification struct {
	Type     string `json:"type"`
	ItemName string `json:"itemName"`
	Question string `json:"question"`
}

// Result is the structured interpretation of a meal description.
type Result struct {
	Category           string             `json:"category"`
	Date               string             `json:"date"` // DateLayout
	LogTime            bool               `json:"logTime"`
	Items              []Item             `json:"items"`
	NeedsClarification bool               `json:"needsClarification"`
	Clarifications     []RawClarification `json:"clarifications"`
	Error              string             `json:"error,omitempty"`
}

// Day returns the date portion ("2006-01-02") of the interpreted timestamp,
// falling back to now when the field is absent or malformed.
func (r *Result) Day(now time.Time) string {
	if t, err := time.Parse(DateLayout, r.Date); err == nil {
		return t.Format("2006-01-02")
	}
	return now.Format("2006-01-02")
}

// Clock returns the time portion ("15:04:05") of the interpreted timestamp
// when LogTime is set, or "" when the entry carries no explicit time.
func (r *Result) Clock() string {
	if !r.LogTime {
		return ""
	}
	if t, err := time.Parse(DateLayout, r.Date); err == nil {
		return t.Format("15:04:05")
	}
	return ""
}

// HistoryEntry is one role-tagged line of conversation context sent along
// with a reinterpretation request.
type HistoryEntry struct {
	Role string // "user" or "assistant"
	Text string
}

// Request carries everything the interpreter needs for one call.
type Request struct {
	Now         time.Time
	Text        string
	History     []HistoryEntry
	Preferences string // serialized known preferences, may be empty
}
