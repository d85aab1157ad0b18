// Package service provides the path-finding use case between the outer
// surfaces (CLI, HTTP) and the search engine.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/metrics"
	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/search"
)

// Compile-time check: *PathService must satisfy domain.PathFinder.
var _ domain.PathFinder = (*PathService)(nil)

// Searcher runs a search between two titles.
type Searcher interface {
	SearchTitles(ctx context.Context, from, to string) (*search.Outcome, error)
}

// TitleFormatter maps a path back to titles.
type TitleFormatter interface {
	Titles(ctx context.Context, path models.Path) ([]string, error)
}

// PathService resolves, searches, and formats, with logging and metrics.
type PathService struct {
	searcher  Searcher
	formatter TitleFormatter
	log       *logrus.Logger
}

// NewPathService creates a PathService.
func NewPathService(searcher Searcher, formatter TitleFormatter, log *logrus.Logger) *PathService {
	return &PathService{searcher: searcher, formatter: formatter, log: log}
}

// FindPath returns the shortest path from one title to another.
func (s *PathService) FindPath(ctx context.Context, from, to string) (*models.SearchResult, error) {
	start := time.Now()
	fields := logrus.Fields{"from": from, "to": to}

	s.log.WithFields(fields).Debug("path.find")

	out, err := s.searcher.SearchTitles(ctx, from, to)
	if out != nil {
		metrics.SearchVisited.Observe(float64(out.SourceVisited + out.DestVisited))
		fields["layers"] = out.Layers
		fields["visited"] = out.SourceVisited + out.DestVisited
	}

	if err != nil {
		s.observe(Outcome(err), start)
		s.log.WithError(err).WithFields(fields).Info("path search failed")

		return nil, err
	}

	titles, err := s.formatter.Titles(ctx, out.Path)
	if err != nil {
		s.observe(Outcome(err), start)
		s.log.WithError(err).WithFields(fields).Error("formatting path")

		return nil, err
	}

	elapsed := time.Since(start)
	s.observe(Outcome(nil), start)
	metrics.SearchHops.Observe(float64(out.Path.Hops()))

	fields["hops"] = out.Path.Hops()
	fields["elapsed"] = elapsed.String()
	s.log.WithFields(fields).Info("path found")

	return &models.SearchResult{
		Source:         models.Vertex{ID: out.Source, Title: titles[0]},
		Destination:    models.Vertex{ID: out.Dest, Title: titles[len(titles)-1]},
		Path:           out.Path,
		Titles:         titles,
		Hops:           out.Path.Hops(),
		Meeting:        out.Meeting,
		SourceVisited:  out.SourceVisited,
		DestVisited:    out.DestVisited,
		Layers:         out.Layers,
		Elapsed:        elapsed,
		ElapsedSeconds: elapsed.Seconds(),
	}, nil
}

func (s *PathService) observe(outcome string, start time.Time) {
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// Outcome classifies a search error into a stable label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, models.ErrInvalidTitle):
		return "invalid"
	case errors.Is(err, models.ErrInternalInconsistency):
		return "internal"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, models.ErrSearchLimit):
		return "limit"
	case errors.Is(err, models.ErrStoreConnection):
		return "store_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
