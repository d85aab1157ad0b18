package search_test

import (
	"sync"
	"testing"

	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/search"
)

func trackers(root models.NodeID) map[string]search.VisitedTracker {
	return map[string]search.VisitedTracker{
		"concurrent": search.NewFrontier(root),
		"local":      search.NewLocalFrontier(root),
	}
}

func TestVisitedTracker_FirstParentWins(t *testing.T) {
	for name, tr := range trackers(1) {
		t.Run(name, func(t *testing.T) {
			if !tr.AddIfNew(7, 3) {
				t.Fatal("first AddIfNew(7, 3) = false, want true")
			}

			if tr.AddIfNew(7, 5) {
				t.Error("second AddIfNew(7, 5) = true, want false")
			}

			p, ok := tr.ParentOf(7)
			if !ok || p != 3 {
				t.Errorf("ParentOf(7) = %d, %v; want 3, true", p, ok)
			}

			if tr.Len() != 2 {
				t.Errorf("Len() = %d, want 2", tr.Len())
			}
		})
	}
}

func TestVisitedTracker_Root(t *testing.T) {
	for name, tr := range trackers(42) {
		t.Run(name, func(t *testing.T) {
			if tr.Root() != 42 {
				t.Errorf("Root() = %d, want 42", tr.Root())
			}

			if !tr.Contains(42) {
				t.Error("root not reported as visited")
			}

			if _, ok := tr.ParentOf(42); ok {
				t.Error("root must not have a parent")
			}

			if tr.AddIfNew(42, 1) {
				t.Error("AddIfNew(root) = true, want false")
			}

			if tr.Contains(43) {
				t.Error("unvisited node reported as visited")
			}

			if _, ok := tr.ParentOf(43); ok {
				t.Error("unvisited node has a parent")
			}

			if tr.Len() != 1 {
				t.Errorf("Len() = %d, want 1", tr.Len())
			}
		})
	}
}

func TestFrontier_ConcurrentDiscovery(t *testing.T) {
	const (
		workers = 16
		nodes   = 2000
	)

	f := search.NewFrontier(0)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins = make(map[models.NodeID]models.NodeID)
	)

	for w := range workers {
		wg.Add(1)

		go func(parent models.NodeID) {
			defer wg.Done()

			for n := models.NodeID(1); n <= nodes; n++ {
				if f.AddIfNew(n, parent) {
					mu.Lock()
					if prev, dup := wins[n]; dup {
						t.Errorf("node %d discovered twice (parents %d and %d)", n, prev, parent)
					}
					wins[n] = parent
					mu.Unlock()
				}
			}
		}(models.NodeID(100_000 + w))
	}

	wg.Wait()

	if len(wins) != nodes {
		t.Fatalf("%d nodes recorded as new, want %d", len(wins), nodes)
	}

	if f.Len() != nodes+1 {
		t.Errorf("Len() = %d, want %d", f.Len(), nodes+1)
	}

	for n, parent := range wins {
		if p, ok := f.ParentOf(n); !ok || p != parent {
			t.Errorf("ParentOf(%d) = %d, %v; want winner %d", n, p, ok, parent)
		}
	}
}
