// Package domain defines the persistence models for the per-user memory of
// the meal agent: learned food aliases and clarification preferences. These
// types are mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// FoodAlias represents a learned mapping from a user's own wording for a food
// to a specific resolved catalog entry. At most one alias per
// (user, normalized term) may be active at any time; re-learning the same
// term with a different food overwrites the resolved target and resets the
// usage counter (last explicit choice wins).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the alias owner; part of the active-alias index.
//   - Term: the user's wording under its normalized form (lowercased,
//     punctuation and connective words stripped).
//   - FoodID: resolved catalog food identifier.
//   - FoodName: resolved catalog food display name.
//   - Partition: catalog partition the resolution came from.
//   - UseCount: number of times the alias short-circuited a search.
//   - IsManual: true when created through the preference wizard rather than
//     learned from a confirmed meal.
//   - IsActive: soft activation flag; deactivated rows are kept for history.
type FoodAlias struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"   gorm:"type:varchar(64);not null;index:idx_user_term,priority:1"`
	Term      string         `json:"term"      gorm:"type:varchar(255);not null;index:idx_user_term,priority:2"`
	FoodID    string         `json:"food_id"   gorm:"type:varchar(64);not null"`
	FoodName  string         `json:"food_name" gorm:"type:varchar(255);not null"`
	Partition string         `json:"partition" gorm:"type:varchar(32);not null"`
	UseCount  int            `json:"use_count" gorm:"not null;default:0"`
	IsManual  bool           `json:"is_manual" gorm:"not null;default:false"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for FoodAlias.
func (FoodAlias) TableName() string { return "food_aliases" }

// ClarificationPreference tracks how a user habitually answers a recurring
// clarification question for a given food term (e.g. always "large" for
// "egg"). The record becomes confirmed only after the same answer has been
// recorded twice in a row; a differing answer resets the streak.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID / Term / Kind: lookup key; Kind is the clarification type label.
//   - Answer: the default answer to auto-apply once confirmed.
//   - Occurrences: consecutive times this answer was given.
//   - IsConfirmed: eligible for silent auto-application when true.
type ClarificationPreference struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string         `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_term_kind,priority:1"`
	Term        string         `json:"term"         gorm:"type:varchar(255);not null;index:idx_user_term_kind,priority:2"`
	Kind        string         `json:"kind"         gorm:"type:varchar(32);not null;index:idx_user_term_kind,priority:3"`
	Answer      string         `json:"answer"       gorm:"type:varchar(255);not null"`
	Occurrences int            `json:"occurrences"  gorm:"not null;default:1"`
	IsConfirmed bool           `json:"is_confirmed" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for ClarificationPreference.
func (ClarificationPreference) TableName() string { return "clarification_preferences" }
