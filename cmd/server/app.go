package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/renshu-app/renshu/internal/config"
	"github.com/renshu-app/renshu/internal/domain/srs"
	"github.com/renshu-app/renshu/internal/offline"
	"github.com/renshu-app/renshu/internal/platform/logger"
	"github.com/renshu-app/renshu/internal/platform/postgres"
	"github.com/renshu-app/renshu/internal/platform/reviewapi"
	"github.com/renshu-app/renshu/internal/platform/sqlitekv"
	"github.com/renshu-app/renshu/internal/service/review"
	"github.com/renshu-app/renshu/internal/submission"
	"github.com/renshu-app/renshu/internal/task"
)

// application holds the shared application dependencies so that startup
// wiring and shutdown cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger

	pool *pgxpool.Pool
	kv   *sqlitekv.KV

	reviewService review.Service
	flushRunner   *task.FlushRunner
}

// initializeApp loads configuration and assembles the dependency graph.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if err := runMigrations(cfg.Database.URL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	kv, err := sqlitekv.Open(cfg.Offline.Path)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open offline store: %w", err)
	}

	stateStore := postgres.NewScheduleStateStore(pool, log)
	dueItems := postgres.NewDueItemsStore(pool, log)

	offlineStore := offline.NewStore(kv, log, offline.WithMaxBytes(cfg.Offline.MaxBytes))
	sender := reviewapi.NewClient(cfg.ReviewStore.BaseURL, cfg.ReviewStore.Timeout, log)
	queue := submission.NewQueue(sender, offlineStore, submission.Config{
		ChunkSize:    cfg.Submission.ChunkSize,
		ChunkTimeout: cfg.Submission.ChunkTimeout,
	}, log)

	reviewService := review.NewService(srs.NewDefaultService(), stateStore, dueItems, queue, log)

	flushRunner := task.NewFlushRunner(reviewService, task.FlushRunnerConfig{
		Interval: cfg.Submission.FlushInterval,
	}, log)

	return &application{
		config:        cfg,
		logger:        log,
		pool:          pool,
		kv:            kv,
		reviewService: reviewService,
		flushRunner:   flushRunner,
	}, nil
}

// runMigrations applies pending schema migrations over a short-lived
// database/sql connection; the pgx pool is opened afterwards.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close migration connection", "error", closeErr)
		}
	}()

	return postgres.MigrateUp(db)
}

// cleanup releases resources in reverse dependency order.
func (app *application) cleanup() {
	app.flushRunner.Stop()

	if err := app.kv.Close(); err != nil {
		app.logger.Warn("failed to close offline store", "error", err)
	}
	app.pool.Close()
}

// uuidResolver treats the bearer credential as the user's UUID. Real
// deployments replace this with a verifier for their identity provider;
// the API layer only depends on the UserResolver interface.
type uuidResolver struct{}

func (uuidResolver) ResolveUser(_ context.Context, credential string) (uuid.UUID, error) {
	userID, err := uuid.Parse(credential)
	if err != nil {
		return uuid.Nil, fmt.Errorf("credential is not a valid user ID: %w", err)
	}
	return userID, nil
}
