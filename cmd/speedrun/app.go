package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/config"
	"github.com/persistorai/speedrun/internal/dbpool"
	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/search"
	"github.com/persistorai/speedrun/internal/service"
	"github.com/persistorai/speedrun/internal/store"
)

// app holds the wired components shared by the search and serve commands.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	pool  *dbpool.Pool
	paths *service.PathService
}

// openPool connects to the graph database. Connection failures are reported
// as models.ErrStoreConnection.
func openPool(ctx context.Context, cfg *config.Config) (*dbpool.Pool, error) {
	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), dbpool.Options{
		MaxConns:         int32(cfg.DBMaxConns), //nolint:gosec // bounded to 200 by config validation.
		StatementTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreConnection, err)
	}

	return pool, nil
}

// newApp connects to the database and wires the search pipeline on top of it.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	graph := store.NewGraphStore(store.Base{
		Pool:         pool,
		Log:          log,
		QueryTimeout: cfg.QueryTimeout,
		Retries:      cfg.StoreRetries,
	})

	paths, err := newPathService(graph, cfg, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, pool: pool, paths: paths}, nil
}

// newPathService wires the title cache, engine, and formatter over provider.
func newPathService(provider domain.GraphDataProvider, cfg *config.Config, log *logrus.Logger) (*service.PathService, error) {
	if cfg.TitleCacheSize > 0 {
		cached, err := store.NewTitleCache(provider, cfg.TitleCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating title cache: %w", err)
		}

		provider = cached
	}

	engine := search.NewEngine(provider, log, search.Options{
		MaxHops:    cfg.MaxHops,
		MaxVisited: cfg.MaxVisited,
		Workers:    cfg.Workers,
		BatchSize:  cfg.BatchSize,
	})

	return service.NewPathService(engine, search.NewFormatter(provider), log), nil
}

func (a *app) close() {
	a.pool.Close()
}
