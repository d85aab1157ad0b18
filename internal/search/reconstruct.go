package search

import (
	"fmt"
	"slices"

	"github.com/persistorai/speedrun/internal/models"
)

// Reconstruct builds the source → destination path through meeting by walking
// parent pointers back to each root. Chains longer than the total number of
// visited nodes, broken chains, and repeated ids are reported as
// models.ErrInternalInconsistency.
func Reconstruct(meeting models.NodeID, source, dest VisitedTracker) (models.Path, error) {
	if !source.Contains(meeting) || !dest.Contains(meeting) {
		return nil, fmt.Errorf("%w: meeting node %d not visited by both sides", models.ErrInternalInconsistency, meeting)
	}

	bound := source.Len() + dest.Len()

	head, err := walkToRoot(meeting, source, bound)
	if err != nil {
		return nil, fmt.Errorf("walking source parents: %w", err)
	}

	tail, err := walkToRoot(meeting, dest, bound)
	if err != nil {
		return nil, fmt.Errorf("walking destination parents: %w", err)
	}

	// head is meeting → source; flip it to source → meeting.
	slices.Reverse(head)

	path := make(models.Path, 0, len(head)+len(tail)-1)
	path = append(path, head...)
	path = append(path, tail[1:]...)

	seen := make(map[models.NodeID]struct{}, len(path))
	for _, id := range path {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: node %d repeats in reconstructed path", models.ErrInternalInconsistency, id)
		}

		seen[id] = struct{}{}
	}

	return path, nil
}

// walkToRoot returns the chain from node to the tracker's root, inclusive of both.
func walkToRoot(node models.NodeID, t VisitedTracker, bound int) ([]models.NodeID, error) {
	chain := []models.NodeID{node}

	for cur := node; cur != t.Root(); {
		p, ok := t.ParentOf(cur)
		if !ok {
			return nil, fmt.Errorf("%w: node %d has no parent and is not root %d", models.ErrInternalInconsistency, cur, t.Root())
		}

		chain = append(chain, p)
		if len(chain) > bound {
			return nil, fmt.Errorf("%w: parent chain from %d exceeds %d nodes", models.ErrInternalInconsistency, node, bound)
		}

		cur = p
	}

	return chain, nil
}
