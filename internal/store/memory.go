package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
)

var (
	_ domain.GraphDataProvider = (*MemoryGraph)(nil)
	_ domain.BatchTitler       = (*MemoryGraph)(nil)
)

// MemoryGraph is an in-process GraphDataProvider. Neighbors are enumerated in
// insertion order; duplicate edges are dropped on insert.
type MemoryGraph struct {
	mu       sync.RWMutex
	byTitle  map[string]models.NodeID
	byID     map[models.NodeID]string
	out      map[models.NodeID][]models.NodeID
	in       map[models.NodeID][]models.NodeID
	edges    map[models.Edge]struct{}
	lookups  atomic.Int64
	expanded atomic.Int64
}

// NewMemoryGraph creates an empty MemoryGraph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		byTitle: make(map[string]models.NodeID),
		byID:    make(map[models.NodeID]string),
		out:     make(map[models.NodeID][]models.NodeID),
		in:      make(map[models.NodeID][]models.NodeID),
		edges:   make(map[models.Edge]struct{}),
	}
}

// AddVertex stores v. Ids and titles must both be unique.
func (g *MemoryGraph) AddVertex(v models.Vertex) error {
	if v.Title == "" {
		return models.ErrInvalidTitle
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.byID[v.ID]; ok {
		return fmt.Errorf("vertex %d: %w", v.ID, models.ErrDuplicateKey)
	}

	if _, ok := g.byTitle[v.Title]; ok {
		return fmt.Errorf("title %q: %w", v.Title, models.ErrDuplicateKey)
	}

	g.byID[v.ID] = v.Title
	g.byTitle[v.Title] = v.ID

	return nil
}

// AddEdge stores a directed edge between two existing vertices.
func (g *MemoryGraph) AddEdge(source, dest models.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range []models.NodeID{source, dest} {
		if _, ok := g.byID[id]; !ok {
			return fmt.Errorf("edge %d→%d references vertex %d: %w", source, dest, id, models.ErrNotFound)
		}
	}

	e := models.Edge{Source: source, Dest: dest}
	if _, dup := g.edges[e]; dup {
		return nil
	}

	g.edges[e] = struct{}{}
	g.out[source] = append(g.out[source], dest)
	g.in[dest] = append(g.in[dest], source)

	return nil
}

// NeighborQueries returns how many Neighbors calls have been served.
func (g *MemoryGraph) NeighborQueries() int64 { return g.expanded.Load() }

// TitleQueries returns how many title or id lookups have been served.
func (g *MemoryGraph) TitleQueries() int64 { return g.lookups.Load() }

// ResolveTitle implements domain.GraphDataProvider.
func (g *MemoryGraph) ResolveTitle(_ context.Context, title string) (models.NodeID, error) {
	g.lookups.Add(1)

	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.byTitle[title]
	if !ok {
		return 0, fmt.Errorf("title %q: %w", title, models.ErrNotFound)
	}

	return id, nil
}

// TitleOf implements domain.GraphDataProvider.
func (g *MemoryGraph) TitleOf(_ context.Context, id models.NodeID) (string, error) {
	g.lookups.Add(1)

	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.byID[id]
	if !ok {
		return "", fmt.Errorf("vertex %d: %w", id, models.ErrNotFound)
	}

	return t, nil
}

// TitlesOf implements domain.BatchTitler.
func (g *MemoryGraph) TitlesOf(_ context.Context, ids []models.NodeID) (map[models.NodeID]string, error) {
	g.lookups.Add(1)

	g.mu.RLock()
	defer g.mu.RUnlock()

	titles := make(map[models.NodeID]string, len(ids))
	for _, id := range ids {
		if t, ok := g.byID[id]; ok {
			titles[id] = t
		}
	}

	return titles, nil
}

// Neighbors implements domain.GraphDataProvider.
func (g *MemoryGraph) Neighbors(ctx context.Context, ids []models.NodeID, dir models.Direction, fn domain.NeighborFunc) error {
	g.expanded.Add(1)

	g.mu.RLock()
	defer g.mu.RUnlock()

	adj := g.out
	if dir == models.Reverse {
		adj = g.in
	}

	for _, from := range ids {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("listing %s neighbors: %w", dir, err)
		}

		for _, to := range adj[from] {
			if err := fn(from, to); err != nil {
				return err
			}
		}
	}

	return nil
}
