package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// The preference wizard guides the user through manually creating or
// deleting an alias, or swapping a validated item's resolved food. Every
// step validates the reply shape and re-prompts on invalid input instead of
// failing the conversation.

func (e *Engine) handlePreferenceAction(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	switch strings.TrimSpace(text) {
	case "1":
		conv.State = StateAwaitingAliasInput
		return []string{msgAliasTerm}, nil

	case "2":
		aliases, err := e.Memory.ListAliases(ctx, sess.ChatID)
		if err != nil || len(aliases) == 0 {
			conv.State = StateAwaitingPreferenceAction
			return []string{msgNoAliases + "\n" + msgPrefMenu}, nil
		}
		conv.AliasChoices = aliases
		conv.State = StateAwaitingAliasDeleteConfirm
		var b strings.Builder
		b.WriteString("Which shortcut should I delete?\n")
		for i, a := range aliases {
			fmt.Fprintf(&b, "%d. %q -> %s\n", i+1, a.Term, a.FoodName)
		}
		return []string{b.String()}, nil

	case "3":
		prefs, err := e.Memory.ListPreferences(ctx, sess.ChatID)
		if err != nil || len(prefs) == 0 {
			conv.State = StateAwaitingPreferenceAction
			return []string{msgNoPreferences + "\n" + msgPrefMenu}, nil
		}
		conv.PrefChoices = prefs
		conv.State = StateAwaitingPrefDeleteConfirm
		var b strings.Builder
		b.WriteString("Which saved answer should I delete?\n")
		for i, p := range prefs {
			fmt.Fprintf(&b, "%d. %q (%s) -> %s\n", i+1, p.Term, p.Kind, p.Answer)
		}
		return []string{b.String()}, nil

	case "4":
		sess.Conv = nil
		return []string{msgCanceled}, nil
	}

	conv.State = StateAwaitingPreferenceAction
	return []string{msgPrefMenu}, nil
}

func (e *Engine) handleAliasInput(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	term := strings.TrimSpace(text)
	if term == "" {
		conv.State = StateAwaitingAliasInput
		return []string{msgAliasTerm}, nil
	}
	conv.WizardTerm = term
	conv.State = StateAwaitingFoodSearch
	return []string{fmt.Sprintf("What food should %q mean? Type a search query.", term)}, nil
}

func (e *Engine) handleFoodSearch(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	r, err := e.Resolver.Resolve(ctx, sess.ChatID, text, sess.Credential)
	if err != nil || len(r.Candidates) == 0 {
		conv.State = StateAwaitingFoodSearch
		return []string{msgNoResults}, nil
	}
	conv.Candidates = r.Candidates
	conv.State = StateAwaitingFoodSelection
	return []string{e.candidateListing(conv.Candidates) + msgPickNumber}, nil
}

func (e *Engine) handleFoodSelection(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	n, ok := parseIndex(text, len(conv.Candidates))
	if !ok {
		conv.State = StateAwaitingFoodSelection
		return []string{msgPickNumber}, nil
	}
	chosen := conv.Candidates[n-1]

	if conv.WizardTerm != "" {
		err := e.Memory.SaveAlias(ctx, sess.ChatID, conv.WizardTerm, chosen.Food.ID, chosen.Food.Name, chosen.Partition, true)
		if err != nil {
			e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Msg("manual alias save failed")
			sess.Conv = nil
			return []string{msgSorry}, nil
		}
		term := conv.WizardTerm
		sess.Conv = nil
		return []string{fmt.Sprintf("Learned: %q now means %s.", term, e.caser.String(chosen.Food.Name))}, nil
	}

	// Bare /search flow: just show the food's declared measures.
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s):\n", e.caser.String(chosen.Food.Name), chosen.Partition)
	for _, m := range chosen.Food.Measures {
		fmt.Fprintf(&b, "- %s = %s g\n", m.Name, formatQuantity(m.Grams))
	}
	sess.Conv = nil
	return []string{b.String()}, nil
}

// handleFoodSearchSelection swaps a validated item for an alternative: a
// number picks from the retained candidate list, free text runs a fresh
// search.
func (e *Engine) handleFoodSearchSelection(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	if conv.EditIndex < 0 || conv.EditIndex >= len(conv.Validated) {
		conv.State = StateAwaitingConfirmation
		return []string{e.buildSummary(conv)}, nil
	}

	if n, ok := parseIndex(text, len(conv.Candidates)); ok {
		chosen := conv.Candidates[n-1]
		old := conv.Validated[conv.EditIndex]

		m, raw := catalog.ResolveMeasure(chosen.Food.Measures, old.RequestedUnit)
		conv.Validated[conv.EditIndex] = ValidatedItem{
			OriginalName:  old.OriginalName,
			FoodID:        chosen.Food.ID,
			FoodName:      chosen.Food.Name,
			Quantity:      old.Quantity,
			RequestedUnit: old.RequestedUnit,
			MeasureID:     m.ID,
			MeasureName:   m.Name,
			MeasureGrams:  m.Grams,
			RawGrams:      raw,
			Grams:         catalog.TotalGrams(old.Quantity, m, raw),
			SourceTab:     chosen.Partition,
			Alternatives:  conv.Candidates,
		}
		e.replaceLearning(conv, old.OriginalName, chosen)
		conv.EditIndex = -1
		conv.State = StateAwaitingConfirmation
		return []string{e.buildSummary(conv)}, nil
	}

	r, err := e.Resolver.Resolve(ctx, sess.ChatID, text, sess.Credential)
	if err != nil || len(r.Candidates) == 0 {
		conv.State = StateAwaitingFoodSearchSelection
		return []string{msgNoResults}, nil
	}
	conv.Candidates = r.Candidates
	conv.State = StateAwaitingFoodSearchSelection
	return []string{e.candidateListing(conv.Candidates) + msgPickNumber}, nil
}

// replaceLearning points any queued learning for term at the newly chosen
// food. Picking an explicit alternative is the strongest learning signal.
func (e *Engine) replaceLearning(conv *Conversation, term string, chosen resolve.Candidate) {
	for i := range conv.Learnings {
		if strings.EqualFold(conv.Learnings[i].Term, term) {
			conv.Learnings[i].FoodID = chosen.Food.ID
			conv.Learnings[i].FoodName = chosen.Food.Name
			conv.Learnings[i].Partition = chosen.Partition
			return
		}
	}
	if materiallyDifferent(term, chosen.Food.Name) {
		conv.Learnings = append(conv.Learnings, Learning{
			Term:      term,
			FoodID:    chosen.Food.ID,
			FoodName:  chosen.Food.Name,
			Partition: chosen.Partition,
		})
	}
}

func (e *Engine) handleAliasDeleteConfirm(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	n, ok := parseIndex(text, len(conv.AliasChoices))
	if !ok {
		conv.State = StateAwaitingAliasDeleteConfirm
		return []string{msgPickNumber}, nil
	}
	a := conv.AliasChoices[n-1]
	if err := e.Memory.DeleteAlias(ctx, sess.ChatID, a.Term); err != nil {
		e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Str("term", a.Term).Msg("alias delete failed")
		sess.Conv = nil
		return []string{msgSorry}, nil
	}
	sess.Conv = nil
	return []string{fmt.Sprintf("Deleted the shortcut %q.", a.Term)}, nil
}

func (e *Engine) handlePrefDeleteConfirm(ctx context.Context, sess *Session, text string) ([]string, error) {
	conv := sess.Conv

	n, ok := parseIndex(text, len(conv.PrefChoices))
	if !ok {
		conv.State = StateAwaitingPrefDeleteConfirm
		return []string{msgPickNumber}, nil
	}
	p := conv.PrefChoices[n-1]
	if err := e.Memory.DeletePreference(ctx, sess.ChatID, p.Term, p.Kind); err != nil {
		e.Logger.Warn().Err(err).Str("chat_id", sess.ChatID).Str("term", p.Term).Msg("preference delete failed")
		sess.Conv = nil
		return []string{msgSorry}, nil
	}
	sess.Conv = nil
	return []string{fmt.Sprintf("Deleted the saved answer for %q.", p.Term)}, nil
}
