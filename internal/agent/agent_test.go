package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tbourn/go-meal-agent/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:          "error",
		DBPath:            filepath.Join(t.TempDir(), "agent.db"),
		SessionTTL:        10 * time.Minute,
		Language:          "en",
		MatchThreshold:    0.2,
		PerPartitionLimit: 5,
		Priorities: config.PriorityConfig{
			Custom:      3.0,
			Favorites:   2.5,
			Common:      1.0,
			Supplements: 0.5,
			All:         0.4,
		},
		Catalog:     config.CatalogConfig{BaseURL: "http://catalog.local", RateRPS: 5, RateBurst: 10},
		Interpreter: config.InterpreterConfig{BaseURL: "http://llm.local", Model: "gpt-4o-mini", Temperature: 0.1},
	}
}

func TestNew_WiresEngineAndCloses(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, testConfig(t), "test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Engine == nil {
		t.Fatalf("expected a wired engine")
	}
	if a.Engine.Resolver == nil || a.Engine.Memory == nil {
		t.Fatalf("engine missing collaborators")
	}

	if err := a.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNew_MissingDBDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "nope", "agent.db")

	if _, err := New(context.Background(), cfg, "test"); err == nil {
		t.Fatalf("expected error for missing database directory")
	}
}
