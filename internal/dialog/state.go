package dialog

import (
	"time"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/clarify"
	"github.com/tbourn/go-meal-agent/internal/domain"
	"github.com/tbourn/go-meal-agent/internal/interpreter"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// State identifies where a conversation currently is. Every state except
// Idle and Processing has a handler registered in the engine's dispatch
// table.
type State int

const (
	StateIdle State = iota
	StateAwaitingMealDescription
	StateProcessing
	StateAwaitingClarification
	StateAwaitingConfirmation
	StateAwaitingOCRCorrection
	StateAwaitingMemoryConfirmation
	StateAwaitingPreferenceAction
	StateAwaitingAliasInput
	StateAwaitingFoodSearch
	StateAwaitingFoodSelection
	StateAwaitingFoodSearchSelection
	StateAwaitingAliasDeleteConfirm
	StateAwaitingPrefDeleteConfirm
)

var stateNames = map[State]string{
	StateIdle:                        "idle",
	StateAwaitingMealDescription:     "awaiting_meal_description",
	StateProcessing:                  "processing",
	StateAwaitingClarification:       "awaiting_clarification",
	StateAwaitingConfirmation:        "awaiting_confirmation",
	StateAwaitingOCRCorrection:       "awaiting_ocr_correction",
	StateAwaitingMemoryConfirmation:  "awaiting_memory_confirmation",
	StateAwaitingPreferenceAction:    "awaiting_preference_action",
	StateAwaitingAliasInput:          "awaiting_alias_input",
	StateAwaitingFoodSearch:          "awaiting_food_search",
	StateAwaitingFoodSelection:       "awaiting_food_selection",
	StateAwaitingFoodSearchSelection: "awaiting_food_search_selection",
	StateAwaitingAliasDeleteConfirm:  "awaiting_alias_delete_confirm",
	StateAwaitingPrefDeleteConfirm:   "awaiting_pref_delete_confirm",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// ValidatedItem is one fully resolved meal entry awaiting confirmation. It
// is immutable once produced for a given validation attempt; picking an
// alternative replaces the whole value.
type ValidatedItem struct {
	OriginalName string
	FoodID       string
	FoodName     string
	Quantity     float64
	RequestedUnit string
	MeasureID    string
	MeasureName  string
	MeasureGrams float64
	RawGrams     bool
	Grams        float64 // final gram total written to the diary
	SourceTab    catalog.Partition
	FromAlias    bool
	AliasID      string

	// Alternatives keeps the ranked candidate list from the resolving
	// search so a later "pick one of these" step never re-queries.
	Alternatives []resolve.Candidate
}

// Learning is a candidate alias write awaiting explicit user consent.
type Learning struct {
	Term      string
	FoodID    string
	FoodName  string
	Partition catalog.Partition
}

// Conversation is the mutable per-chat dialogue record. It is only ever
// touched by the handler currently processing that chat's message.
type Conversation struct {
	State          State
	StartedAt      time.Time
	LastActivityAt time.Time

	History             []interpreter.HistoryEntry
	OriginalDescription string
	RawTranscript       string // stored OCR transcript, reprocessed on correction

	Pending   []clarify.Item
	Meal      *interpreter.Result
	Validated []ValidatedItem
	Learnings []Learning

	// Wizard and alternative-selection context.
	WizardTerm   string
	Candidates   []resolve.Candidate
	AliasChoices []domain.FoodAlias
	PrefChoices  []domain.ClarificationPreference
	EditIndex    int // validated item being swapped; -1 when none
}

func newConversation(now time.Time) *Conversation {
	return &Conversation{
		State:          StateAwaitingMealDescription,
		StartedAt:      now,
		LastActivityAt: now,
		EditIndex:      -1,
	}
}

func (c *Conversation) appendUser(text string) {
	c.History = append(c.History, interpreter.HistoryEntry{Role: "user", Text: text})
}

func (c *Conversation) appendAssistant(text string) {
	c.History = append(c.History, interpreter.HistoryEntry{Role: "assistant", Text: text})
}
