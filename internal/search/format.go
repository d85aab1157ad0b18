package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
)

// PathSeparator joins titles in a rendered path.
const PathSeparator = " → "

// Formatter maps path ids back to article titles. Every id in a path came
// from the provider, so a missing title is an internal inconsistency.
type Formatter struct {
	provider domain.GraphDataProvider
}

// NewFormatter creates a Formatter.
func NewFormatter(provider domain.GraphDataProvider) *Formatter {
	return &Formatter{provider: provider}
}

// Titles returns the title of every node in path, in order. It uses a single
// batched lookup when the provider implements domain.BatchTitler.
func (f *Formatter) Titles(ctx context.Context, path models.Path) ([]string, error) {
	if bt, ok := f.provider.(domain.BatchTitler); ok {
		return f.batchTitles(ctx, bt, path)
	}

	titles := make([]string, len(path))
	for i, id := range path {
		t, err := f.provider.TitleOf(ctx, id)
		if err != nil {
			return nil, wrapLookup(id, err)
		}

		titles[i] = t
	}

	return titles, nil
}

func (f *Formatter) batchTitles(ctx context.Context, bt domain.BatchTitler, path models.Path) ([]string, error) {
	byID, err := bt.TitlesOf(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("looking up path titles: %w", err)
	}

	titles := make([]string, len(path))
	for i, id := range path {
		t, ok := byID[id]
		if !ok {
			return nil, wrapLookup(id, models.ErrNotFound)
		}

		titles[i] = t
	}

	return titles, nil
}

func wrapLookup(id models.NodeID, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: path node %d: %w", models.ErrInternalInconsistency, id, err)
	}

	return fmt.Errorf("looking up title of %d: %w", id, err)
}

// Render joins titles with PathSeparator.
func Render(titles []string) string {
	return strings.Join(titles, PathSeparator)
}
