package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/clarify"
	"github.com/tbourn/go-meal-agent/internal/interpreter"
	"github.com/tbourn/go-meal-agent/internal/observability"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// validateMeal runs the commit orchestration for a structured meal request:
// resolve every item against the catalog, resolve each measure, compute gram
// totals, and queue alias learnings. Every item is attempted before any
// failure is surfaced, so a single clarification round corrects everything.
func (e *Engine) validateMeal(ctx context.Context, sess *Session, res *interpreter.Result) ([]string, error) {
	conv := sess.Conv

	if len(res.Items) == 0 {
		conv.State = StateAwaitingMealDescription
		return []string{msgRetry}, nil
	}

	// Items with no unit at all need a size answer before the catalog can
	// be consulted, unless a confirmed preference fills it in.
	items := make([]interpreter.Item, len(res.Items))
	copy(items, res.Items)
	var sizeClars []clarify.Item
	for i, it := range items {
		if strings.TrimSpace(it.Unit) != "" {
			continue
		}
		if ans, ok := e.Memory.ConfirmedAnswer(ctx, sess.ChatID, resolve.Normalize(it.Name), string(clarify.TypeMissingSize)); ok {
			items[i].Unit = ans
			continue
		}
		sizeClars = append(sizeClars, clarify.Item{
			Type:         clarify.TypeMissingSize,
			ItemName:     it.Name,
			Question:     fmt.Sprintf("What size or measure for %q?", it.Name),
			OriginalTerm: it.Name,
		})
	}
	if len(sizeClars) > 0 {
		conv.Pending = sizeClars
		q := clarify.FormatQuestions(sizeClars)
		conv.appendAssistant(q)
		conv.State = StateAwaitingClarification
		return []string{q}, nil
	}

	var (
		validated []ValidatedItem
		learnings []Learning
		notFound  []clarify.Item
	)
	for _, it := range items {
		start := time.Now()
		r, err := e.Resolver.Resolve(ctx, sess.ChatID, it.Name, sess.Credential)
		observability.ObserveResolution(time.Since(start))
		if err != nil || !r.Found {
			notFound = append(notFound, clarify.Item{
				Type:         clarify.TypeFoodNotFound,
				ItemName:     it.Name,
				Question:     fmt.Sprintf("I could not find %q in the catalog. What should I look for instead?", it.Name),
				OriginalTerm: it.Name,
			})
			continue
		}

		best := r.Best
		m, raw := catalog.ResolveMeasure(best.Food.Measures, it.Unit)
		v := ValidatedItem{
			OriginalName:  it.Name,
			FoodID:        best.Food.ID,
			FoodName:      best.Food.Name,
			Quantity:      it.Quantity,
			RequestedUnit: it.Unit,
			MeasureID:     m.ID,
			MeasureName:   m.Name,
			MeasureGrams:  m.Grams,
			RawGrams:      raw,
			Grams:         catalog.TotalGrams(it.Quantity, m, raw),
			SourceTab:     best.Partition,
			FromAlias:     r.FromAlias,
			AliasID:       r.AliasID,
			Alternatives:  r.Candidates,
		}
		validated = append(validated, v)

		if !r.FromAlias && materiallyDifferent(it.Name, best.Food.Name) {
			learnings = append(learnings, Learning{
				Term:      it.Name,
				FoodID:    best.Food.ID,
				FoodName:  best.Food.Name,
				Partition: best.Partition,
			})
		}
	}

	// Resolved data is kept even when other items missed, so the user only
	// re-answers the failures.
	conv.Validated = validated
	conv.Learnings = learnings

	if len(notFound) > 0 {
		conv.Pending = notFound
		q := clarify.FormatQuestions(notFound)
		conv.appendAssistant(q)
		conv.State = StateAwaitingClarification
		return []string{q}, nil
	}

	conv.State = StateAwaitingConfirmation
	return []string{e.buildSummary(conv)}, nil
}

// commitMeal writes the validated entries to the diary. On failure the
// conversation (and its validated list) is preserved for a retry.
func (e *Engine) commitMeal(ctx context.Context, sess *Session) ([]string, error) {
	conv := sess.Conv

	day := conv.Meal.Day(e.now())
	clock := conv.Meal.Clock()
	order := catalog.MealOrderCode(strings.ToLower(conv.Meal.Category))

	entries := make([]catalog.ServingEntry, 0, len(conv.Validated))
	for _, v := range conv.Validated {
		entries = append(entries, catalog.ServingEntry{
			Day:       day,
			Time:      clock,
			FoodID:    v.FoodID,
			MeasureID: v.MeasureID,
			Grams:     v.Grams,
			MealOrder: order,
		})
	}

	err := e.Writer.SaveServings(ctx, sess.Credential, entries)
	observability.CountCommit(err)
	if err != nil {
		e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Msg("diary write failed")
		conv.State = StateAwaitingConfirmation
		return []string{msgCommitFail}, nil
	}

	if len(conv.Learnings) > 0 {
		conv.State = StateAwaitingMemoryConfirmation
		return []string{msgCommitOK, e.learningPrompt(conv.Learnings)}, nil
	}
	sess.Conv = nil
	return []string{msgCommitOK}, nil
}

func (e *Engine) learningPrompt(ls []Learning) string {
	var b strings.Builder
	b.WriteString("Should I remember these shortcuts for next time?\n")
	for i, l := range ls {
		fmt.Fprintf(&b, "%d. %q -> %s\n", i+1, l.Term, e.caser.String(l.FoodName))
	}
	b.WriteString("Reply yes, no, or the numbers to keep.")
	return b.String()
}

// buildSummary renders the validated list for user confirmation.
func (e *Engine) buildSummary(conv *Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is your %s for %s:\n", mealLabel(conv.Meal.Category), conv.Meal.Day(e.now()))
	for i, v := range conv.Validated {
		fmt.Fprintf(&b, "%d. %s %s of %s (%s g)\n",
			i+1,
			formatQuantity(v.Quantity),
			v.MeasureName,
			e.caser.String(v.FoodName),
			formatQuantity(v.Grams),
		)
	}
	b.WriteString("Send /save to log it, a number to adjust that item, or describe any correction.")
	return b.String()
}

// candidateListing renders a ranked candidate list as a numbered menu.
func (e *Engine) candidateListing(cands []resolve.Candidate) string {
	var b strings.Builder
	for i, c := range cands {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, e.caser.String(c.Food.Name), c.Partition)
	}
	return b.String()
}

func mealLabel(category string) string {
	switch strings.ToLower(category) {
	case "breakfast", "desayuno":
		return "breakfast"
	case "lunch", "almuerzo", "comida":
		return "lunch"
	case "dinner", "cena":
		return "dinner"
	case "snack", "merienda":
		return "snack"
	default:
		return "meal"
	}
}

func formatQuantity(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// materiallyDifferent reports whether the user's wording and the resolved
// catalog name differ enough to be worth learning as an alias. Containment
// in either direction does not count as different.
func materiallyDifferent(original, resolved string) bool {
	a := resolve.Normalize(original)
	b := resolve.Normalize(resolved)
	if a == "" || b == "" || a == b {
		return false
	}
	return !strings.Contains(a, b) && !strings.Contains(b, a)
}
