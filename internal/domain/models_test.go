package domain

import (
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (FoodAlias{}).TableName() != "food_aliases" {
		t.Fatalf("FoodAlias.TableName() = %q; want %q", (FoodAlias{}).TableName(), "food_aliases")
	}
	if (ClarificationPreference{}).TableName() != "clarification_preferences" {
		t.Fatalf("ClarificationPreference.TableName() = %q; want %q",
			(ClarificationPreference{}).TableName(), "clarification_preferences")
	}
}

func TestMigrations_IndexesExist(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&FoodAlias{}, &ClarificationPreference{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&FoodAlias{}, &ClarificationPreference{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	if !m.HasIndex(&FoodAlias{}, "idx_user_term") {
		t.Fatalf("expected index idx_user_term on food_aliases")
	}
	if !m.HasIndex(&ClarificationPreference{}, "idx_user_term_kind") {
		t.Fatalf("expected index idx_user_term_kind on clarification_preferences")
	}
}

func TestFoodAlias_DefaultsOnInsert(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&FoodAlias{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	a := FoodAlias{
		ID:        "a-1",
		UserID:    "u1",
		Term:      "pollo",
		FoodID:    "42",
		FoodName:  "Chicken Breast, Raw",
		Partition: "common",
		IsActive:  true,
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("insert alias: %v", err)
	}

	var got FoodAlias
	if err := db.First(&got, "id = ?", "a-1").Error; err != nil {
		t.Fatalf("load alias: %v", err)
	}
	if got.UseCount != 0 || got.IsManual {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not populated")
	}
}
