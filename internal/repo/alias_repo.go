// Package repo implements the data persistence layer for the per-user memory
// models, backed by GORM. This file provides repository functions for the
// FoodAlias model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic beyond the
// alias-competition rule, only CRUD persistence and query composition.
//
// Error semantics:
//   - When an alias is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
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

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// GetActiveAlias fetches the single active alias for (userID, term), or
// ErrNotFound. Terms are matched exactly; callers normalize before lookup.
func GetActiveAlias(ctx context.Context, db *gorm.DB, userID, term string) (*domain.FoodAlias, error) {
	var a domain.FoodAlias
	err := db.WithContext(ctx).
		Where("user_id = ? AND term = ? AND is_active = ?", userID, term, true).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActiveAliases returns every active alias for userID, ordered by term
// length descending so that longer terms are matched first during detection.
func ListActiveAliases(ctx context.Context, db *gorm.DB, userID string) ([]domain.FoodAlias, error) {
	var out []domain.FoodAlias
	err := db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("length(term) desc, term asc").
		Find(&out).Error
	return out, err
}

// SaveAlias records that term resolves to the given catalog food for userID.
//
// Competition rule: if an active alias for (userID, term) already exists and
// points at the same food, its usage counter is incremented; if it points at
// a different food, the resolved target is overwritten and the counter reset
// to 1. Absent any active alias, a fresh row is inserted with UseCount 1, so
// at most one active row per (userID, term) ever exists.
func SaveAlias(ctx context.Context, db *gorm.DB, userID, term, foodID, foodName, partition string, manual bool) (*domain.FoodAlias, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, gorm.ErrInvalidValue
	}

	existing, err := GetActiveAlias(ctx, db, userID, term)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.FoodID == foodID {
			existing.UseCount++
		} else {
			existing.FoodID = foodID
			existing.FoodName = foodName
			existing.Partition = partition
			existing.UseCount = 1
		}
		if manual {
			existing.IsManual = true
		}
		if err := db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	a := &domain.FoodAlias{
		ID:        uuid.NewString(),
		UserID:    userID,
		Term:      term,
		FoodID:    foodID,
		FoodName:  foodName,
		Partition: partition,
		UseCount:  1,
		IsManual:  manual,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// IncrementAliasUse bumps the usage counter of an alias by one. It is called
// whenever alias detection short-circuits a catalog search.
func IncrementAliasUse(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.FoodAlias{}).
		Where("id = ?", id).
		Update("use_count", gorm.Expr("use_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateAlias flips the active alias for (userID, term) to inactive.
// The row is retained for history. Returns ErrNotFound when no active alias
// exists for the key.
func DeactivateAlias(ctx context.Context, db *gorm.DB, userID, term string) error {
	res := db.WithContext(ctx).
		Model(&domain.FoodAlias{}).
		Where("user_id = ? AND term = ? AND is_active = ?", userID, term, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
