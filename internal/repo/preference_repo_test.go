package repo

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-meal-agent/internal/domain"
)

func TestRecordPreference_TwoStrikesConfirm(t *testing.T) {
	db := newRepoDB(t, &domain.ClarificationPreference{})
	ctx := context.Background()

	p, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "large")
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if p.Occurrences != 1 || p.IsConfirmed {
		t.Fatalf("after first record: %+v", p)
	}

	p, err = RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "Large")
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if p.Occurrences != 2 || !p.IsConfirmed {
		t.Fatalf("same answer twice should confirm: %+v", p)
	}
}

func TestRecordPreference_DifferingAnswerResets(t *testing.T) {
	db := newRepoDB(t, &domain.ClarificationPreference{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "large"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	p, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "small")
	if err != nil {
		t.Fatalf("differing record: %v", err)
	}
	if p.Answer != "small" || p.Occurrences != 1 || p.IsConfirmed {
		t.Fatalf("differing answer should reset streak: %+v", p)
	}
}

func TestListConfirmedPreferences_FiltersUnconfirmed(t *testing.T) {
	db := newRepoDB(t, &domain.ClarificationPreference{})
	ctx := context.Background()

	if _, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "large"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "large"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := RecordPreference(ctx, db, "u1", "rice", "MISSING_WEIGHT", "100g"); err != nil {
		t.Fatalf("record: %v", err)
	}

	out, err := ListConfirmedPreferences(ctx, db, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].Term != "egg" {
		t.Fatalf("unexpected confirmed set: %+v", out)
	}
}

func TestDeletePreference(t *testing.T) {
	db := newRepoDB(t, &domain.ClarificationPreference{})
	ctx := context.Background()

	if _, err := RecordPreference(ctx, db, "u1", "egg", "MISSING_SIZE", "large"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := DeletePreference(ctx, db, "u1", "egg", "MISSING_SIZE"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetPreference(ctx, db, "u1", "egg", "MISSING_SIZE"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound after delete, got %v", err)
	}
	if err := DeletePreference(ctx, db, "u1", "egg", "MISSING_SIZE"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound on repeat delete, got %v", err)
	}
}
