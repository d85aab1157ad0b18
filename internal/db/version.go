package db

import (
	"context"
	"fmt"

	"github.com/persistorai/speedrun/internal/db/migrations"
	"github.com/persistorai/speedrun/internal/dbpool"
)

// SchemaVersion returns the number of embedded SQL migration files, which is
// the schema version this binary expects.
func SchemaVersion() int64 {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return 0
	}

	var count int64
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}

// CurrentVersion returns the schema version recorded in the database.
func CurrentVersion(ctx context.Context, pool *dbpool.Pool) (int64, error) {
	provider, closeDB, err := newProvider(pool, migrations.FS)
	if err != nil {
		return 0, err
	}
	defer closeDB() //nolint:errcheck // best-effort close of migration handle.

	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return v, nil
}

// Probe reports database readiness for the HTTP health endpoints.
type Probe struct {
	Pool *dbpool.Pool
}

// HealthCheck verifies the database answers queries.
func (p Probe) HealthCheck(ctx context.Context) error {
	return p.Pool.HealthCheck(ctx)
}

// AppliedVersion returns the schema version recorded in the database.
func (p Probe) AppliedVersion(ctx context.Context) (int64, error) {
	return CurrentVersion(ctx, p.Pool)
}
