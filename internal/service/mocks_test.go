package service

import (
	"context"
	"sync"

	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/search"
)

// mockSearcher records calls and returns configured responses.
type mockSearcher struct {
	mu    sync.Mutex
	calls []string

	searchTitles func(ctx context.Context, from, to string) (*search.Outcome, error)
}

func (m *mockSearcher) SearchTitles(ctx context.Context, from, to string) (*search.Outcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, from+"→"+to)
	m.mu.Unlock()

	return m.searchTitles(ctx, from, to)
}

// mockFormatter records calls and returns configured responses.
type mockFormatter struct {
	mu    sync.Mutex
	calls int

	titles func(ctx context.Context, path models.Path) ([]string, error)
}

func (m *mockFormatter) Titles(ctx context.Context, path models.Path) ([]string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	return m.titles(ctx, path)
}
