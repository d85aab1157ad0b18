package models

import "time"

// Path is an ordered sequence of vertex ids from source to destination inclusive.
type Path []NodeID

// Hops returns the number of edges traversed by the path.
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}

	return len(p) - 1
}

// SearchResult is the outcome of a successful path search.
type SearchResult struct {
	Source         Vertex        `json:"source"`
	Destination    Vertex        `json:"destination"`
	Path           Path          `json:"path"`
	Titles         []string      `json:"titles"`
	Hops           int           `json:"hops"`
	Meeting        NodeID        `json:"meeting_node"`
	SourceVisited  int           `json:"source_visited"`
	DestVisited    int           `json:"dest_visited"`
	Layers         int           `json:"layers"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}
