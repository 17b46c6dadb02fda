// File: cmd/runtime.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/browser"
	"github.com/kalyptra/ariadne/internal/config"
	"github.com/kalyptra/ariadne/internal/embedding"
	"github.com/kalyptra/ariadne/internal/memory"
	"github.com/kalyptra/ariadne/internal/observability"
	"github.com/kalyptra/ariadne/internal/resolve"
	"github.com/kalyptra/ariadne/internal/semstore"
)

// stack is the assembled engine plus everything it needs torn down.
type stack struct {
	session *browser.Session
	engine  *resolve.Engine
	store   *semstore.Store
	logger  *zap.Logger
	cleanup func()
}

// buildStack launches the browser, connects the store, and wires the
// resolution engine for one session against the given URL.
func buildStack(ctx context.Context, cfg *config.Config, url string) (*stack, error) {
	logger := observability.GetLogger()

	dbURL := cfg.Database().URL
	if dbURL == "" {
		return nil, fmt.Errorf("database.url is required (set ARIADNE_DATABASE_URL)")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	engine, err := embedding.NewEngine(ctx, cfg.Embedding())
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Debug("Embedding engine ready.", zap.String("backend", engine.Name()))

	store, err := semstore.New(ctx, pool, engine, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	session, err := browser.NewSession(ctx, cfg.Browser(), logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := session.Navigate(ctx, url); err != nil {
		session.Close()
		pool.Close()
		return nil, err
	}

	snapshotter := browser.NewSnapshotter(session, cfg.Resolver().RefPrefix, logger)
	syncer := memory.NewSynchronizer(store, logger)
	executors := browser.Executors(session, logger)
	resolver := resolve.New(session.ID(), snapshotter, store, syncer, executors, logger)
	resolver.SetSearchLimit(cfg.Resolver().SearchLimit)

	return &stack{
		session: session,
		engine:  resolver,
		store:   store,
		logger:  logger,
		cleanup: func() {
			// Session records are scoped to this run; drop them on the way out.
			if err := store.Reset(context.Background(), session.ID()); err != nil {
				logger.Warn("Failed to reset session records.", zap.Error(err))
			}
			session.Close()
			pool.Close()
		},
	}, nil
}
