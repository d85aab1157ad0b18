package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
)

var (
	_ domain.GraphDataProvider = (*GraphStore)(nil)
	_ domain.BatchTitler       = (*GraphStore)(nil)
)

// Neighbor queries. DISTINCT deduplicates parallel links at the provider
// boundary; the ORDER BY makes enumeration order stable.
const (
	forwardNeighborsSQL = `SELECT DISTINCT source_vertex_id, dest_vertex_id FROM edges
		WHERE source_vertex_id = ANY($1::bigint[])
		ORDER BY source_vertex_id, dest_vertex_id`

	reverseNeighborsSQL = `SELECT DISTINCT dest_vertex_id, source_vertex_id FROM edges
		WHERE dest_vertex_id = ANY($1::bigint[])
		ORDER BY dest_vertex_id, source_vertex_id`
)

// GraphStore serves vertex and edge lookups from PostgreSQL.
type GraphStore struct {
	Base
}

// NewGraphStore creates a GraphStore with the given shared base.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// ResolveTitle returns the id of the vertex whose title matches exactly.
func (s *GraphStore) ResolveTitle(ctx context.Context, title string) (models.NodeID, error) {
	var id int64

	err := s.run(ctx, "resolve_title", func(ctx context.Context) error {
		return s.Pool.QueryRow(ctx, `SELECT id FROM vertexes WHERE title = $1`, title).Scan(&id)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("title %q: %w", title, models.ErrNotFound)
		}

		return 0, fmt.Errorf("resolving title: %w", err)
	}

	return models.NodeID(id), nil
}

// TitleOf returns the title of vertex id.
func (s *GraphStore) TitleOf(ctx context.Context, id models.NodeID) (string, error) {
	var title string

	err := s.run(ctx, "title_of", func(ctx context.Context) error {
		return s.Pool.QueryRow(ctx, `SELECT title FROM vertexes WHERE id = $1`, int64(id)).Scan(&title)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("vertex %d: %w", id, models.ErrNotFound)
		}

		return "", fmt.Errorf("looking up title: %w", err)
	}

	return title, nil
}

// TitlesOf returns the titles of every existing vertex in ids in one query.
func (s *GraphStore) TitlesOf(ctx context.Context, ids []models.NodeID) (map[models.NodeID]string, error) {
	var titles map[models.NodeID]string

	err := s.run(ctx, "titles_of", func(ctx context.Context) error {
		titles = make(map[models.NodeID]string, len(ids))

		rows, err := s.Pool.Query(ctx, `SELECT id, title FROM vertexes WHERE id = ANY($1::bigint[])`, idArgs(ids))
		if err != nil {
			return fmt.Errorf("querying titles: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id    int64
				title string
			)
			if err := rows.Scan(&id, &title); err != nil {
				return fmt.Errorf("scanning title: %w", err)
			}

			titles[models.NodeID(id)] = title
		}

		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("looking up titles: %w", err)
	}

	return titles, nil
}

// errVisitAborted marks an error returned by the caller's NeighborFunc so it is
// never mistaken for a store failure and retried.
type errVisitAborted struct{ err error }

func (e errVisitAborted) Error() string { return e.err.Error() }
func (e errVisitAborted) Unwrap() error { return e.err }

// Neighbors streams every (from, to) pair for ids in one round trip.
func (s *GraphStore) Neighbors(ctx context.Context, ids []models.NodeID, dir models.Direction, fn domain.NeighborFunc) error {
	if len(ids) == 0 {
		return nil
	}

	query := forwardNeighborsSQL
	if dir == models.Reverse {
		query = reverseNeighborsSQL
	}

	args := idArgs(ids)

	err := s.run(ctx, dir.String()+"_neighbors", func(ctx context.Context) error {
		rows, err := s.Pool.Query(ctx, query, args)
		if err != nil {
			return fmt.Errorf("querying neighbors: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var from, to int64
			if err := rows.Scan(&from, &to); err != nil {
				return fmt.Errorf("scanning neighbor: %w", err)
			}

			if err := fn(models.NodeID(from), models.NodeID(to)); err != nil {
				return errVisitAborted{err: err}
			}
		}

		return rows.Err()
	})
	if err != nil {
		var aborted errVisitAborted
		if errors.As(err, &aborted) {
			return aborted.err
		}

		return fmt.Errorf("listing %s neighbors of %d nodes: %w", dir, len(ids), err)
	}

	return nil
}
