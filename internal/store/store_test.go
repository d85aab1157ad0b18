package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/db"
	"github.com/persistorai/speedrun/internal/dbpool"
	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, dbpool.Options{MaxConns: 4})
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// fixture is a private id range and title prefix inside the shared test database.
type fixture struct {
	store  *store.GraphStore
	env    *testEnv
	base   models.NodeID
	prefix string
}

// id maps a small local id into the fixture's range.
func (f *fixture) id(local int) models.NodeID { return f.base + models.NodeID(local) }

// title maps a short local name to the fixture's unique title.
func (f *fixture) title(name string) string { return f.prefix + name }

// setupFixture seeds vertices (local id → name) and edges, removing them after the test.
func setupFixture(t *testing.T, vertices map[int]string, edges [][2]int) *fixture {
	t.Helper()

	env := getTestEnv(t)
	u := uuid.New()
	f := &fixture{
		env:    env,
		base:   models.NodeID(u.ID() &^ 0xFF),
		prefix: u.String()[:8] + " ",
	}

	ctx := context.Background()

	t.Cleanup(func() {
		//nolint:errcheck // best-effort cleanup; edges cascade.
		env.pool.Exec(context.Background(),
			"DELETE FROM vertexes WHERE id BETWEEN $1 AND $2", int64(f.base), int64(f.base)+0xFF)
	})

	for local, name := range vertices {
		if err := env.pool.Exec(ctx, "INSERT INTO vertexes (id, title) VALUES ($1, $2)",
			int64(f.id(local)), f.title(name)); err != nil {
			t.Fatalf("inserting vertex %d: %v", local, err)
		}
	}

	for _, e := range edges {
		if err := env.pool.Exec(ctx, "INSERT INTO edges (source_vertex_id, dest_vertex_id) VALUES ($1, $2)",
			int64(f.id(e[0])), int64(f.id(e[1]))); err != nil {
			t.Fatalf("inserting edge %v: %v", e, err)
		}
	}

	f.store = store.NewGraphStore(store.Base{
		Pool:         env.pool,
		Log:          env.log,
		QueryTimeout: 10 * time.Second,
		Retries:      1,
	})

	return f
}

func diamondFixture(t *testing.T) *fixture {
	t.Helper()

	return setupFixture(t,
		map[int]string{1: "Fish", 2: "Water", 3: "Ocean", 4: "Sea"},
		[][2]int{{1, 2}, {2, 3}, {1, 4}, {4, 3}},
	)
}
