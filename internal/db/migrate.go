// Package db manages the vertex/edge schema with goose (github.com/pressly/goose/v3).
//
// Migration files live in internal/db/migrations/ and are embedded via //go:embed.
// `speedrun migrate` applies pending migrations; searches never alter the schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/db/migrations"
	"github.com/persistorai/speedrun/internal/dbpool"
)

// newProvider opens a database/sql handle over the pool's connection string
// and builds a goose provider for fsys. The returned close func releases the handle.
func newProvider(pool *dbpool.Pool, fsys fs.FS) (*goose.Provider, func() error, error) {
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return nil, nil, fmt.Errorf("opening sql.DB for migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("creating goose provider: %w", err)
	}

	return provider, sqlDB.Close, nil
}

// RunMigrations applies all pending migrations from the embedded schema.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	provider, closeDB, err := newProvider(pool, migrations.FS)
	if err != nil {
		return err
	}
	defer closeDB() //nolint:errcheck // best-effort close of migration handle.

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}

		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}

	if len(results) == 0 {
		log.Debug("all migrations already applied")
	}

	return nil
}
