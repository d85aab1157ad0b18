// Package models defines data types for the article link graph.
package models

import (
	"strconv"
	"strings"
)

// maxTitleLength caps article titles accepted from callers.
const maxTitleLength = 1024

// NodeID is the stable numeric identifier of a vertex.
type NodeID uint32

// String implements fmt.Stringer.
func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Vertex represents one article in the link graph.
type Vertex struct {
	ID    NodeID `json:"id"`
	Title string `json:"title"`
}

// NormalizeTitle trims surrounding whitespace and validates a user-supplied title.
// Matching against stored titles is exact and case-sensitive.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrInvalidTitle
	}

	if len(t) > maxTitleLength {
		return "", ErrFieldTooLong("title", maxTitleLength)
	}

	return t, nil
}
