package memory

import (
	"context"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/domain"
	"github.com/tbourn/go-meal-agent/internal/repo"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

// NoopStore is the null Store used when the memory collaborator is absent.
// Detection and auto-application quietly yield nothing; writes are accepted
// and discarded. The rest of the flow is unaffected.
type NoopStore struct{}

func (NoopStore) ActiveAlias(ctx context.Context, userID, term string) (*resolve.Alias, error) {
	return nil, repo.ErrNotFound
}

func (NoopStore) MarkUsed(ctx context.Context, aliasID string) error { return nil }

func (NoopStore) Detect(ctx context.Context, userID, text string) ([]Detection, error) {
	return nil, nil
}

func (NoopStore) SaveAlias(ctx context.Context, userID, term, foodID, foodName string, partition catalog.Partition, manual bool) error {
	return nil
}

func (NoopStore) DeleteAlias(ctx context.Context, userID, term string) error { return nil }

func (NoopStore) ListAliases(ctx context.Context, userID string) ([]domain.FoodAlias, error) {
	return nil, nil
}

func (NoopStore) RecordAnswer(ctx context.Context, userID, term, kind, answer string) error {
	return nil
}

func (NoopStore) ConfirmedAnswer(ctx context.Context, userID, term, kind string) (string, bool) {
	return "", false
}

func (NoopStore) ConfirmedPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error) {
	return nil, nil
}

func (NoopStore) ListPreferences(ctx context.Context, userID string) ([]domain.ClarificationPreference, error) {
	return nil, nil
}

func (NoopStore) DeletePreference(ctx context.Context, userID, term, kind string) error { return nil }
