// Package domain defines the canonical interfaces shared across the search
// engine, the stores, and the outer surfaces (CLI, HTTP). Consumers should
// depend on these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/speedrun/internal/models"
)

// NeighborFunc receives one (from, to) pair during a batched neighbor lookup.
// from is always a member of the requested batch; to is its neighbor in the
// requested direction. Returning an error aborts the lookup.
type NeighborFunc func(from, to models.NodeID) error

// GraphDataProvider is the only I/O boundary of the search engine.
//
// Neighbors streams every neighbor of every id in ids for the given direction in
// a single round trip. Enumeration order must be stable for a given store state;
// it decides which of several equally short paths is reported, never whether a
// shortest path is found. Implementations that retry after a partial read may
// deliver a pair more than once, so fn must tolerate duplicates.
type GraphDataProvider interface {
	ResolveTitle(ctx context.Context, title string) (models.NodeID, error)
	TitleOf(ctx context.Context, id models.NodeID) (string, error)
	Neighbors(ctx context.Context, ids []models.NodeID, dir models.Direction, fn NeighborFunc) error
}

// BatchTitler is an optional GraphDataProvider capability resolving many ids at once.
// Missing ids are absent from the returned map.
type BatchTitler interface {
	TitlesOf(ctx context.Context, ids []models.NodeID) (map[models.NodeID]string, error)
}

// PathFinder finds and formats the shortest path between two titles.
type PathFinder interface {
	FindPath(ctx context.Context, from, to string) (*models.SearchResult, error)
}
