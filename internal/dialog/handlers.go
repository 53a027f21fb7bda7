package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-meal-agent/internal/clarify"
	"github.com/tbourn/go-meal-agent/internal/interpreter"
	"github.com/tbourn/go-meal-agent/internal/memory"
	"github.com/tbourn/go-meal-agent/internal/observability"
	"github.com/tbourn/go-meal-agent/internal/resolve"
	"github.com/tbourn/go-meal-agent/internal/utils"
)

// handleMealDescription starts the interpretation loop for a fresh meal
// description.
func (e *Engine) handleMealDescription(ctx context.Context, sess *Session, text string) ([]string, error) {
	return e.processDescription(ctx, sess, text)
}

// processDescription substitutes known aliases into the text, invokes the
// interpreter, and routes on its output. Shared by the description, OCR
// correction, and /continue paths.
func (e *Engine) processDescription(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv
	conv.OriginalDescription = text

	detections, err := e.Memory.Detect(ctx, sess.ChatID, text)
	if err != nil {
		// Memory is optional; detection failure only disables shortcuts.
		e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Msg("alias detection failed")
		detections = nil
	}
	conv.appendUser(memory.ApplyDetections(text, detections))

	res, err := e.runInterpreter(ctx, sess)
	if err != nil {
		conv.State = StateAwaitingMealDescription
		return []string{msgRetry}, nil
	}
	return e.routeInterpretation(ctx, sess, res, detections, true)
}

// runInterpreter calls the external interpreter with the accumulated history
// and the user's confirmed preferences.
func (e *Engine) runInterpreter(ctx context.Context, sess *Session) (*interpreter.Result, error) {
	conv := sess.Conv
	req := interpreter.Request{
		Now:         e.now(),
		Text:        conv.OriginalDescription,
		History:     conv.History,
		Preferences: e.preferenceSummary(ctx, sess.ChatID),
	}
	res, err := e.Interp.Interpret(ctx, req)
	observability.CountInterpreterRequest(err)
	if err != nil {
		e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Msg("interpretation failed")
		return nil, err
	}
	if res.Error != "" {
		e.Logger.Warn().Str("chat_id", sess.ChatID).Str("detail", res.Error).Msg("interpreter reported error")
		return nil, interpreter.ErrUnparseable
	}
	return res, nil
}

// routeInterpretation branches on an interpreter result: back to the
// description prompt on failure, into the clarification loop when questions
// remain after auto-applying confirmed preferences, or on to meal
// validation when fully specified.
func (e *Engine) routeInterpretation(ctx context.Context, sess *Session, res *interpreter.Result, detections []memory.Detection, allowAutoApply bool) ([]string, error) {
	conv := sess.Conv
	conv.Meal = res

	if !res.NeedsClarification || len(res.Clarifications) == 0 {
		return e.validateMeal(ctx, sess, res)
	}

	items := clarify.FromRaw(res.Clarifications)
	for i := range items {
		if d := memory.MatchItem(items[i].ItemName, detections); d != nil {
			items[i].OriginalTerm = d.Term
		}
	}

	if allowAutoApply {
		remaining := items[:0]
		applied := false
		for _, it := range items {
			term := it.OriginalTerm
			if term == "" {
				term = it.ItemName
			}
			if ans, ok := e.Memory.ConfirmedAnswer(ctx, sess.ChatID, resolve.Normalize(term), string(it.Type)); ok {
				// The stored answer is injected as if the user had
				// replied to the question.
				conv.appendUser(fmt.Sprintf("%s: %s", it.ItemName, ans))
				applied = true
				continue
			}
			remaining = append(remaining, it)
		}
		if applied {
			res2, err := e.runInterpreter(ctx, sess)
			if err != nil {
				conv.State = StateAwaitingMealDescription
				return []string{msgRetry}, nil
			}
			return e.routeInterpretation(ctx, sess, res2, detections, false)
		}
		items = remaining
	}

	conv.Pending = items
	q := clarify.FormatQuestions(items)
	conv.appendAssistant(q)
	conv.State = StateAwaitingClarification
	return []string{q}, nil
}

// handleClarification parses the user's reply against the pending questions,
// records answers for preference learning, and re-invokes the interpreter
// with the full history.
func (e *Engine) handleClarification(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	answers, ok := clarify.ParseReply(text, conv.Pending)
	if !ok {
		// Ambiguous reply: nothing is recorded, the user answers again.
		conv.State = StateAwaitingClarification
		return []string{msgAskAgain}, nil
	}

	// Pending order, not map order, so the history reads deterministically.
	for idx := 0; idx < len(conv.Pending); idx++ {
		ans, answered := answers[idx]
		if !answered {
			continue
		}
		it := conv.Pending[idx]
		term := it.OriginalTerm
		if term == "" {
			term = it.ItemName
		}
		// FoodNotFound answers name a replacement food; they are alias
		// territory, not preference territory.
		if it.Type != clarify.TypeFoodNotFound {
			if err := e.Memory.RecordAnswer(ctx, sess.ChatID, resolve.Normalize(term), string(it.Type), ans); err != nil {
				e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Msg("preference record failed")
			}
		}
		conv.appendUser(fmt.Sprintf("%s: %s", it.ItemName, ans))
	}
	conv.Pending = nil

	detections, _ := e.Memory.Detect(ctx, sess.ChatID, conv.OriginalDescription)
	res, err := e.runInterpreter(ctx, sess)
	if err != nil {
		conv.State = StateAwaitingMealDescription
		return []string{msgRetry}, nil
	}
	return e.routeInterpretation(ctx, sess, res, detections, false)
}

// handleConfirmation reacts to the user reviewing the validated list: a
// number opens the alternative-selection flow for that item, anything else
// is a correction fed back through the interpreter. The actual write happens
// on /save.
func (e *Engine) handleConfirmation(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	if n, ok := parseIndex(text, len(conv.Validated)); ok {
		conv.EditIndex = n - 1
		conv.Candidates = conv.Validated[n-1].Alternatives
		conv.State = StateAwaitingFoodSearchSelection
		if len(conv.Candidates) == 0 {
			return []string{msgSearchPrompt}, nil
		}
		return []string{
			"Alternatives for " + e.caser.String(conv.Validated[n-1].FoodName) + ":\n" +
				e.candidateListing(conv.Candidates) +
				"Pick a number, or type a new search.",
		}, nil
	}

	conv.appendUser(text)
	detections, _ := e.Memory.Detect(ctx, sess.ChatID, conv.OriginalDescription)
	res, err := e.runInterpreter(ctx, sess)
	if err != nil {
		conv.State = StateAwaitingConfirmation
		return []string{msgRetry}, nil
	}
	return e.routeInterpretation(ctx, sess, res, detections, false)
}

// handleOCRCorrection reprocesses the stored transcript together with the
// user's correction text through the normal description path.
func (e *Engine) handleOCRCorrection(ctx context.Context, sess *Session, text string) ([]string, error) {
	combined := sess.Conv.RawTranscript
	if text != "" {
		combined = combined + "\n" + text
	}
	return e.processDescription(ctx, sess, combined)
}

// handleMemoryConfirmation decides which queued alias learnings to persist:
// an affirmative keeps all, a negative none, a list of numbers a subset.
func (e *Engine) handleMemoryConfirmation(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	switch {
	case isAffirmative(text):
		n := e.persistLearnings(ctx, sess.ChatID, conv.Learnings)
		sess.Conv = nil
		return []string{fmt.Sprintf("Remembered %d shortcut(s).", n)}, nil

	case isNegative(text):
		sess.Conv = nil
		return []string{msgMemoryDone}, nil
	}

	picked := pickIndices(text, len(conv.Learnings))
	if len(picked) == 0 {
		conv.State = StateAwaitingMemoryConfirmation
		return []string{msgPickNumber}, nil
	}
	subset := make([]Learning, 0, len(picked))
	for _, i := range picked {
		subset = append(subset, conv.Learnings[i-1])
	}
	n := e.persistLearnings(ctx, sess.ChatID, subset)
	sess.Conv = nil
	return []string{fmt.Sprintf("Remembered %d shortcut(s).", n)}, nil
}

func (e *Engine) persistLearnings(ctx context.Context, chatID string, ls []Learning) int {
	saved := 0
	for _, l := range ls {
		err := e.Memory.SaveAlias(ctx, chatID, l.Term, l.FoodID, l.FoodName, l.Partition, false)
		if err != nil {
			e.Logger.Warn().Err(err).Str("chat_id", chatID).Str("term", l.Term).Msg("alias save failed")
			continue
		}
		saved++
	}
	return saved
}

// preferenceSummary serializes the user's confirmed preferences for the
// interpreter request.
func (e *Engine) preferenceSummary(ctx context.Context, chatID string) string {
	prefs, err := e.Memory.ConfirmedPreferences(ctx, chatID)
	if err != nil || len(prefs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(prefs))
	for _, p := range prefs {
		parts = append(parts, fmt.Sprintf("%s %s=%s", p.Term, p.Kind, p.Answer))
	}
	return strings.Join(parts, "; ")
}

// preferenceListing renders the user's saved shortcuts and confirmed
// defaults ahead of the preference menu.
func (e *Engine) preferenceListing(ctx context.Context, chatID string) string {
	var b strings.Builder
	aliases, err := e.Memory.ListAliases(ctx, chatID)
	if err == nil && len(aliases) > 0 {
		b.WriteString("Your shortcuts:\n")
		for _, a := range aliases {
			fmt.Fprintf(&b, "- %q -> %s\n", a.Term, a.FoodName)
		}
	}
	prefs, err := e.Memory.ConfirmedPreferences(ctx, chatID)
	if err == nil && len(prefs) > 0 {
		b.WriteString("Your defaults:\n")
		for _, p := range prefs {
			fmt.Fprintf(&b, "- %s: %s\n", p.Term, p.Answer)
		}
	}
	return b.String()
}

// parseIndex reads a 1-based selection index, accepting a trailing dot or
// parenthesis.
func parseIndex(text string, max int) (int, bool) {
	t := strings.TrimRight(strings.TrimSpace(text), ".)")
	n := utils.AtoiDefault(t, 0)
	if n >= 1 && n <= max {
		return n, true
	}
	return 0, false
}

// pickIndices extracts every valid 1-based index mentioned in the text.
func pickIndices(text string, max int) []int {
	var out []int
	seen := make(map[int]struct{})
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return r < '0' || r > '9'
	}) {
		n := utils.AtoiDefault(f, 0)
		if n < 1 || n > max {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
