// Package memory implements the per-user alias and clarification-preference
// memory. It detects known term→food mappings inside raw text, learns new
// ones under the alias-competition rule, and tracks repeated clarification
// answers until they become auto-applied preferences.
//
// The dialog engine depends only on the Store interface; when no database is
// configured, the NoopStore silently disables alias short-circuiting and
// preference auto-application without affecting the rest of the flow.
package memory

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/domain"
	"github.com/tbourn/go-meal-agent/internal/repo"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// Detection is one alias hit inside a raw text, positioned so callers can
// substitute the resolved name in place.
type Detection struct {
	Term     string
	Position int
	Length   int
	Alias    domain.FoodAlias
}

// Store is the memory boundary consumed by the dialog engine. It also
// satisfies resolve.AliasSource so the resolution engine can short-circuit
// straight to a stored food.
type Store interface {
	resolve.AliasSource

	// Detect returns the non-overlapping alias hits in text, in order of
	// appearance.
	Detect(ctx context.Context, userID, text string) ([]Detection, error)

	// SaveAlias learns (or reinforces) a term→food mapping. Terms are
	// keyed by their normalized form; implementations normalize, so
	// callers may pass the user's raw wording.
	SaveAlias(ctx context.Context, userID, term, foodID, foodName string, partition catalog.Partition, manual bool) error

	// DeleteAlias deactivates the active alias for (userID, term).
	DeleteAlias(ctx context.Context, userID, term string) error

	// ListAliases returns the user's active aliases, longest term first.
	ListAliases(ctx context.Context, userID string) ([]domain.FoodAlias, error)

	// RecordAnswer registers a clarification answer for preference learning.
	RecordAnswer(ctx context.Context, userID, term, kind, answer string) error

	// ConfirmedAnswer returns the auto-applicable answer for
	// (userID, term, kind), if one has been confirmed.
	ConfirmedAnswer(ctx context.Context, userID, term, kind string) (string, bool)

	// ConfirmedPreferences lists every confirmed preference for the user.
	ConfirmedPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error)

	// ListPreferences lists every preference, confirmed or not.
	ListPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error)

	// DeletePreference removes the stored answer for (userID, term, kind).
	DeletePreference(ctx context.Context, userID, term, kind string) error
}

// GormStore is the database-backed Store.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore wraps a GORM handle.
func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

// ActiveAlias implements resolve.AliasSource.
func (s *GormStore) ActiveAlias(ctx context.Context, userID, term string) (*resolve.Alias, error) {
	a, err := repo.GetActiveAlias(ctx, s.DB, userID, resolve.Normalize(term))
	if err != nil {
		return nil, err
	}
	return &resolve.Alias{
		ID:        a.ID,
		FoodID:    a.FoodID,
		FoodName:  a.FoodName,
		Partition: catalog.Partition(a.Partition),
	}, nil
}

// MarkUsed implements resolve.AliasSource.
func (s *GormStore) MarkUsed(ctx context.Context, aliasID string) error {
	return repo.IncrementAliasUse(ctx, s.DB, aliasID)
}

// Detect scans text for the user's active aliases (longest term first) at
// word boundaries, never returning overlapping hits.
func (s *GormStore) Detect(ctx context.Context, userID, text string) ([]Detection, error) {
	aliases, err := repo.ListActiveAliases(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return detectIn(text, aliases), nil
}

// SaveAlias implements Store. The term is reduced to its normalized form
// before persisting so every lookup path shares one canonical key.
func (s *GormStore) SaveAlias(ctx context.Context, userID, term, foodID, foodName string, partition catalog.Partition, manual bool) error {
	_, err := repo.SaveAlias(ctx, s.DB, userID, resolve.Normalize(term), foodID, foodName, string(partition), manual)
	return err
}

// DeleteAlias implements Store.
func (s *GormStore) DeleteAlias(ctx context.Context, userID, term string) error {
	return repo.DeactivateAlias(ctx, s.DB, userID, resolve.Normalize(term))
}

// ListAliases implements Store.
func (s *GormStore) ListAliases(ctx context.Context, userID string) ([]domain.FoodAlias, error) {
	return repo.ListActiveAliases(ctx, s.DB, userID)
}

// RecordAnswer implements Store.
func (s *GormStore) RecordAnswer(ctx context.Context, userID, term, kind, answer string) error {
	_, err := repo.RecordPreference(ctx, s.DB, userID, term, kind, answer)
	return err
}

// ConfirmedAnswer implements Store.
func (s *GormStore) ConfirmedAnswer(ctx context.Context, userID, term, kind string) (string, bool) {
	p, err := repo.GetPreference(ctx, s.DB, userID, term, kind)
	if err != nil || !p.IsConfirmed {
		return "", false
	}
	return p.Answer, true
}

// ConfirmedPreferences implements Store.
func (s *GormStore) ConfirmedPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error) {
	return repo.ListConfirmedPreferences(ctx, s.DB, userID)
}

// ListPreferences implements Store.
func (s *GormStore) ListPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error) {
	return repo.ListPreferences(ctx, s.DB, userID)
}

// DeletePreference implements Store.
func (s *GormStore) DeletePreference(ctx context.Context, userID, term, kind string) error {
	return repo.DeletePreference(ctx, s.DB, userID, term, kind)
}
