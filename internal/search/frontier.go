// Package search implements bidirectional breadth-first shortest-path search
// over a graph that is fetched lazily, one frontier layer at a time, from a
// domain.GraphDataProvider.
package search

import (
	"sync"
	"sync/atomic"

	"github.com/persistorai/speedrun/internal/models"
)

// VisitedTracker records the nodes one side of a search has reached and the
// parent that reached each of them first. A parent pointer is fixed at first
// discovery and never overwritten.
type VisitedTracker interface {
	// Root returns the endpoint this side of the search started from.
	Root() models.NodeID
	// AddIfNew records parent for node and reports true iff node was not yet visited.
	AddIfNew(node, parent models.NodeID) bool
	// ParentOf returns the recorded parent of node. The root and unvisited nodes have none.
	ParentOf(node models.NodeID) (models.NodeID, bool)
	// Contains reports whether node has been visited (the root included).
	Contains(node models.NodeID) bool
	// Len returns the number of visited nodes, the root included.
	Len() int
}

var (
	_ VisitedTracker = (*Frontier)(nil)
	_ VisitedTracker = (*LocalFrontier)(nil)
)

// frontierShards must be a power of two.
const frontierShards = 64

type frontierShard struct {
	mu      sync.Mutex
	parents map[models.NodeID]models.NodeID
}

// Frontier is a VisitedTracker safe for concurrent AddIfNew calls. Visited
// nodes are spread over independently locked shards so workers expanding the
// same layer rarely contend; the first writer for a node wins.
type Frontier struct {
	root   models.NodeID
	size   atomic.Int64
	shards [frontierShards]frontierShard
}

// NewFrontier creates a concurrent tracker whose only visited node is root.
func NewFrontier(root models.NodeID) *Frontier {
	f := &Frontier{root: root}
	for i := range f.shards {
		f.shards[i].parents = make(map[models.NodeID]models.NodeID)
	}

	f.size.Store(1)

	return f
}

func (f *Frontier) shard(node models.NodeID) *frontierShard {
	// Fibonacci hashing spreads sequential ids across shards.
	h := uint32(node) * 2654435769
	return &f.shards[h>>(32-6)]
}

// Root implements VisitedTracker.
func (f *Frontier) Root() models.NodeID { return f.root }

// AddIfNew implements VisitedTracker.
func (f *Frontier) AddIfNew(node, parent models.NodeID) bool {
	if node == f.root {
		return false
	}

	s := f.shard(node)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.parents[node]; ok {
		return false
	}

	s.parents[node] = parent
	f.size.Add(1)

	return true
}

// ParentOf implements VisitedTracker.
func (f *Frontier) ParentOf(node models.NodeID) (models.NodeID, bool) {
	if node == f.root {
		return 0, false
	}

	s := f.shard(node)
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parents[node]

	return p, ok
}

// Contains implements VisitedTracker.
func (f *Frontier) Contains(node models.NodeID) bool {
	if node == f.root {
		return true
	}

	_, ok := f.ParentOf(node)

	return ok
}

// Len implements VisitedTracker.
func (f *Frontier) Len() int { return int(f.size.Load()) }

// LocalFrontier is a VisitedTracker for single-worker searches. It is not safe
// for concurrent use.
type LocalFrontier struct {
	root    models.NodeID
	parents map[models.NodeID]models.NodeID
}

// NewLocalFrontier creates a single-threaded tracker whose only visited node is root.
func NewLocalFrontier(root models.NodeID) *LocalFrontier {
	return &LocalFrontier{root: root, parents: make(map[models.NodeID]models.NodeID)}
}

// Root implements VisitedTracker.
func (f *LocalFrontier) Root() models.NodeID { return f.root }

// AddIfNew implements VisitedTracker.
func (f *LocalFrontier) AddIfNew(node, parent models.NodeID) bool {
	if node == f.root {
		return false
	}

	if _, ok := f.parents[node]; ok {
		return false
	}

	f.parents[node] = parent

	return true
}

// ParentOf implements VisitedTracker.
func (f *LocalFrontier) ParentOf(node models.NodeID) (models.NodeID, bool) {
	p, ok := f.parents[node]
	return p, ok
}

// Contains implements VisitedTracker.
func (f *LocalFrontier) Contains(node models.NodeID) bool {
	if node == f.root {
		return true
	}

	_, ok := f.parents[node]

	return ok
}

// Len implements VisitedTracker.
func (f *LocalFrontier) Len() int { return len(f.parents) + 1 }
