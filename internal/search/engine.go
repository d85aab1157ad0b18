package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
)

// Engine defaults.
const (
	DefaultWorkers   = 4
	DefaultBatchSize = 1000
)

// State is a step of the search lifecycle.
type State int

// Search states, in lifecycle order.
const (
	StateInit State = iota
	StateExpanding
	StateMet
	StateFound
	StateExhausted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateExpanding:
		return "expanding"
	case StateMet:
		return "met"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Options tunes an Engine. Zero values select defaults; zero caps mean unlimited.
type Options struct {
	MaxHops    int // longest path, in hops, the search may report
	MaxVisited int // stop once both sides together have visited this many nodes
	Workers    int // concurrent neighbor batches per layer
	BatchSize  int // node ids per neighbor query
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}

	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}

	return o
}

// Outcome describes a finished search.
type Outcome struct {
	Source        models.NodeID
	Dest          models.NodeID
	Path          models.Path
	Meeting       models.NodeID
	SourceVisited int
	DestVisited   int
	Layers        int
	State         State
}

// Engine runs bidirectional breadth-first searches against a provider.
// An Engine is safe for concurrent use; each search owns its own state.
type Engine struct {
	provider domain.GraphDataProvider
	opts     Options
	log      *logrus.Logger
}

// NewEngine creates an Engine.
func NewEngine(provider domain.GraphDataProvider, log *logrus.Logger, opts Options) *Engine {
	return &Engine{provider: provider, opts: opts.withDefaults(), log: log}
}

// SearchTitles resolves both titles and searches between them. Resolution
// failures are returned before any neighbor is fetched.
func (e *Engine) SearchTitles(ctx context.Context, from, to string) (*Outcome, error) {
	source, err := e.resolve(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("resolving source: %w", err)
	}

	dest, err := e.resolve(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	return e.Search(ctx, source, dest)
}

func (e *Engine) resolve(ctx context.Context, title string) (models.NodeID, error) {
	t, err := models.NormalizeTitle(title)
	if err != nil {
		return 0, err
	}

	return e.provider.ResolveTitle(ctx, t)
}

// side is one half of an in-flight search.
type side struct {
	name    string
	dir     models.Direction
	visited VisitedTracker
	active  []models.NodeID
	depth   int
}

// searchState is the mutable state of one search.
type searchState struct {
	source *side
	dest   *side
	state  State
	layers int
}

func (e *Engine) newState(source, dest models.NodeID) *searchState {
	track := func(root models.NodeID) VisitedTracker {
		if e.opts.Workers > 1 {
			return NewFrontier(root)
		}

		return NewLocalFrontier(root)
	}

	return &searchState{
		source: &side{name: "source", dir: models.Forward, visited: track(source), active: []models.NodeID{source}},
		dest:   &side{name: "destination", dir: models.Reverse, visited: track(dest), active: []models.NodeID{dest}},
		state:  StateInit,
	}
}

func (e *Engine) transition(st *searchState, to State) {
	e.log.WithFields(logrus.Fields{
		"from":           st.state.String(),
		"to":             to.String(),
		"layers":         st.layers,
		"source_depth":   st.source.depth,
		"dest_depth":     st.dest.depth,
		"source_visited": st.source.visited.Len(),
		"dest_visited":   st.dest.visited.Len(),
	}).Debug("search state")

	st.state = to
}

func (st *searchState) outcome() *Outcome {
	return &Outcome{
		Source:        st.source.visited.Root(),
		Dest:          st.dest.visited.Root(),
		SourceVisited: st.source.visited.Len(),
		DestVisited:   st.dest.visited.Len(),
		Layers:        st.layers,
		State:         st.state,
	}
}

// Search finds a shortest path from source to dest. It returns
// models.ErrUnreachable when no path exists, models.ErrSearchLimit when a
// configured cap stops it first, and the context error when cancelled.
// Provider errors are returned unchanged in the chain; partial state is discarded.
func (e *Engine) Search(ctx context.Context, source, dest models.NodeID) (*Outcome, error) { //nolint:funlen // state machine reads best in one place.
	st := e.newState(source, dest)

	if source == dest {
		e.transition(st, StateFound)
		out := st.outcome()
		out.Path = models.Path{source}
		out.Meeting = source

		return out, nil
	}

	e.transition(st, StateExpanding)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search cancelled after %d layers: %w", st.layers, err)
		}

		if len(st.source.active) == 0 || len(st.dest.active) == 0 {
			e.transition(st, StateExhausted)
			return st.outcome(), models.ErrUnreachable
		}

		if e.opts.MaxHops > 0 && st.source.depth+st.dest.depth >= e.opts.MaxHops {
			e.transition(st, StateExhausted)
			return st.outcome(), fmt.Errorf("%w: no path within %d hops", models.ErrSearchLimit, e.opts.MaxHops)
		}

		if e.opts.MaxVisited > 0 && st.source.visited.Len()+st.dest.visited.Len() >= e.opts.MaxVisited {
			e.transition(st, StateExhausted)
			return st.outcome(), fmt.Errorf("%w: visited %d nodes", models.ErrSearchLimit, e.opts.MaxVisited)
		}

		// Expand the smaller active layer; ties go to the source side.
		grow, other := st.source, st.dest
		if len(st.dest.active) < len(st.source.active) {
			grow, other = st.dest, st.source
		}

		meetings, err := e.expand(ctx, grow, other)
		if err != nil {
			return nil, err
		}

		st.layers++

		if len(meetings) == 0 {
			continue
		}

		// Every meeting found in one layer lies on a path of the same, minimal length.
		e.transition(st, StateMet)
		meeting := slices.Min(meetings)

		path, err := Reconstruct(meeting, st.source.visited, st.dest.visited)
		if err != nil {
			return nil, err
		}

		e.transition(st, StateFound)
		out := st.outcome()
		out.Path = path
		out.Meeting = meeting

		return out, nil
	}
}

// expand advances s by one hop and returns every newly visited node that other
// has already visited.
func (e *Engine) expand(ctx context.Context, s, other *side) ([]models.NodeID, error) {
	batches := chunk(s.active, e.opts.BatchSize)
	next := make([][]models.NodeID, len(batches))

	var (
		mu       sync.Mutex
		meetings []models.NodeID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, batch := range batches {
		g.Go(func() error {
			return e.provider.Neighbors(gctx, batch, s.dir, func(from, to models.NodeID) error {
				if !s.visited.AddIfNew(to, from) {
					return nil
				}

				next[i] = append(next[i], to)

				if other.visited.Contains(to) {
					mu.Lock()
					meetings = append(meetings, to)
					mu.Unlock()
				}

				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search cancelled expanding %s side: %w", s.name, err)
		}

		return nil, fmt.Errorf("expanding %s side at depth %d: %w", s.name, s.depth, err)
	}

	s.active = slices.Concat(next...)
	s.depth++

	e.log.WithFields(logrus.Fields{
		"side":       s.name,
		"depth":      s.depth,
		"layer_size": len(s.active),
		"visited":    s.visited.Len(),
		"meetings":   len(meetings),
	}).Debug("layer expanded")

	return meetings, nil
}

// chunk splits ids into consecutive batches of at most size ids.
func chunk(ids []models.NodeID, size int) [][]models.NodeID {
	batches := make([][]models.NodeID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		batches = append(batches, ids[start:min(start+size, len(ids))])
	}

	return batches
}
