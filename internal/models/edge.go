package models

// Edge represents a directed hyperlink from one article to another.
type Edge struct {
	Source NodeID `json:"source_vertex_id"`
	Dest   NodeID `json:"dest_vertex_id"`
}

// Direction selects which end of an edge a neighbor lookup follows.
type Direction int

const (
	// Forward follows outbound links (source → dest).
	Forward Direction = iota
	// Reverse follows inbound links (dest → source).
	Reverse
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}
