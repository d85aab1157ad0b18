package api_test

import (
	"context"
	"sync"

	"github.com/persistorai/speedrun/internal/models"
)

// mockPathFinder records calls and returns configured responses.
type mockPathFinder struct {
	mu    sync.Mutex
	calls [][2]string

	findPath func(ctx context.Context, from, to string) (*models.SearchResult, error)
}

func (m *mockPathFinder) FindPath(ctx context.Context, from, to string) (*models.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, [2]string{from, to})
	m.mu.Unlock()

	return m.findPath(ctx, from, to)
}

// mockProbe returns configured readiness results.
type mockProbe struct {
	healthErr error
	applied   int64
	schemaErr error
}

func (m *mockProbe) HealthCheck(context.Context) error { return m.healthErr }

func (m *mockProbe) AppliedVersion(context.Context) (int64, error) { return m.applied, m.schemaErr }
