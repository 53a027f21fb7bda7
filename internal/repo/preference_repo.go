// Package repo implements the data persistence layer for the per-user memory
// models, backed by GORM. This file provides repository functions for the
// ClarificationPreference model.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-meal-agent/internal/domain"
)

// GetPreference fetches the preference for (userID, term, kind), or
// ErrNotFound.
func GetPreference(ctx context.Context, db *gorm.DB, userID, term, kind string) (*domain.ClarificationPreference, error) {
	var p domain.ClarificationPreference
	err := db.WithContext(ctx).
		Where("user_id = ? AND term = ? AND kind = ?", userID, term, kind).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPreferences returns every preference for userID ordered by term.
func ListPreferences(ctx context.Context, db *gorm.DB, userID string) ([]domain.ClarificationPreference, error) {
	var out []domain.ClarificationPreference
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("term asc, kind asc").
		Find(&out).Error
	return out, err
}

// ListConfirmedPreferences returns only confirmed preferences for userID,
// the set eligible for silent auto-application.
func ListConfirmedPreferences(ctx context.Context, db *gorm.DB, userID string) ([]domain.ClarificationPreference, error) {
	var out []domain.ClarificationPreference
	err := db.WithContext(ctx).
		Where("user_id = ? AND is_confirmed = ?", userID, true).
		Order("term asc, kind asc").
		Find(&out).Error
	return out, err
}

// RecordPreference registers that userID answered a clarification of the
// given kind for term with answer.
//
// Streak rule: a repeat of the stored answer increments the occurrence count
// and confirms the preference once the count reaches 2; a differing answer
// replaces the stored one, resets the count to 1, and clears confirmation.
func RecordPreference(ctx context.Context, db *gorm.DB, userID, term, kind, answer string) (*domain.ClarificationPreference, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	answer = strings.TrimSpace(answer)
	if term == "" || answer == "" {
		return nil, gorm.ErrInvalidValue
	}

	existing, err := GetPreference(ctx, db, userID, term, kind)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if strings.EqualFold(existing.Answer, answer) {
			existing.Occurrences++
			if existing.Occurrences >= 2 {
				existing.IsConfirmed = true
			}
		} else {
			existing.Answer = answer
			existing.Occurrences = 1
			existing.IsConfirmed = false
		}
		if err := db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	p := &domain.ClarificationPreference{
		ID:          uuid.NewString(),
		UserID:      userID,
		Term:        term,
		Kind:        kind,
		Answer:      answer,
		Occurrences: 1,
		IsConfirmed: false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePreference removes the preference for (userID, term, kind).
// Returns ErrNotFound when no such preference exists.
func DeletePreference(ctx context.Context, db *gorm.DB, userID, term, kind string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND term = ? AND kind = ?", userID, term, kind).
		Delete(&domain.ClarificationPreference{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
