// Package agent wires configuration, persistence, outbound clients, and the
// dialog engine into a runnable unit. Hosts embed it behind whatever inbound
// transport they use (Telegram poller, WhatsApp webhook, CLI).
package agent

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/config"
	"github.com/tbourn/go-meal-agent/internal/dialog"
	"github.com/tbourn/go-meal-agent/internal/interpreter"
	"github.com/tbourn/go-meal-agent/internal/memory"
	"github.com/tbourn/go-meal-agent/internal/observability"
	"github.com/tbourn/go-meal-agent/internal/repo"
	"github.com/tbourn/go-meal-agent/internal/resolve"
	"github.com/tbourn/go-meal-agent/internal/sysutil"
)

// Agent bundles the dialog engine with the resources it owns.
type Agent struct {
	Engine *dialog.Engine
	Logger zerolog.Logger

	shutdownOTel func(context.Context) error
	closeDB      func() error
}

// New builds a fully wired Agent from configuration. The caller is
// responsible for invoking Close when done.
func New(ctx context.Context, cfg *config.Config, version string) (*Agent, error) {
	sysutil.SetLogLevel(cfg.LogLevel)
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.LogPretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return nil, err
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	closeDB := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	cat := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.RateRPS, cfg.Catalog.RateBurst, logger)
	if cfg.Catalog.Timeout > 0 {
		cat.HTTPClient.Timeout = cfg.Catalog.Timeout
	}

	interp := interpreter.NewClient(cfg.Interpreter.BaseURL, cfg.Interpreter.APIKey, cfg.Interpreter.Model, logger)
	if cfg.Interpreter.Timeout > 0 {
		interp.HTTPClient.Timeout = cfg.Interpreter.Timeout
	}
	if cfg.Interpreter.Temperature > 0 {
		interp.Temperature = cfg.Interpreter.Temperature
	}

	mem := memory.NewGormStore(db)

	resolver := &resolve.Engine{
		Searcher: cat,
		Aliases:  mem,
		Priorities: map[catalog.Partition]float64{
			catalog.PartitionCustom:      cfg.Priorities.Custom,
			catalog.PartitionFavorites:   cfg.Priorities.Favorites,
			catalog.PartitionCommon:      cfg.Priorities.Common,
			catalog.PartitionSupplements: cfg.Priorities.Supplements,
			catalog.PartitionAll:         cfg.Priorities.All,
		},
		Threshold: cfg.MatchThreshold,
		PerTab:    cfg.PerPartitionLimit,
	}

	engine := dialog.NewEngine(interp, resolver, cat, cat, mem, cfg.SessionTTL, logger)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observability.ServeMetrics(cfg.MetricsAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
	}

	return &Agent{
		Engine:       engine,
		Logger:       logger,
		shutdownOTel: shutdown,
		closeDB:      closeDB,
	}, nil
}

// Close releases the database handle and flushes telemetry.
func (a *Agent) Close(ctx context.Context) error {
	var first error
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil {
			first = err
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
