package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/metrics"
	"github.com/persistorai/speedrun/internal/models"
)

var (
	_ domain.GraphDataProvider = (*TitleCache)(nil)
	_ domain.BatchTitler       = (*TitleCache)(nil)
)

// TitleCache memoizes title ↔ id lookups of a wrapped provider in bounded LRUs
// and collapses concurrent lookups of the same key into one store query.
// Neighbor lookups pass straight through. Failed lookups are not cached.
type TitleCache struct {
	next   domain.GraphDataProvider
	ids    *lru.Cache[string, models.NodeID]
	titles *lru.Cache[models.NodeID, string]
	group  singleflight.Group
}

// NewTitleCache wraps next with caches holding up to size entries each.
func NewTitleCache(next domain.GraphDataProvider, size int) (*TitleCache, error) {
	ids, err := lru.New[string, models.NodeID](size)
	if err != nil {
		return nil, fmt.Errorf("creating id cache: %w", err)
	}

	titles, err := lru.New[models.NodeID, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating title cache: %w", err)
	}

	return &TitleCache{next: next, ids: ids, titles: titles}, nil
}

// ResolveTitle implements domain.GraphDataProvider.
func (c *TitleCache) ResolveTitle(ctx context.Context, title string) (models.NodeID, error) {
	if id, ok := c.ids.Get(title); ok {
		metrics.TitleCacheTotal.WithLabelValues("hit").Inc()
		return id, nil
	}

	metrics.TitleCacheTotal.WithLabelValues("miss").Inc()

	val, err := c.shared(ctx, "t:"+title, func(ctx context.Context) (any, error) {
		id, err := c.next.ResolveTitle(ctx, title)
		if err != nil {
			return nil, err
		}

		c.remember(id, title)

		return id, nil
	})
	if err != nil {
		return 0, err
	}

	id, ok := val.(models.NodeID)
	if !ok {
		return 0, fmt.Errorf("title cache: unexpected singleflight result type %T", val)
	}

	return id, nil
}

// TitleOf implements domain.GraphDataProvider.
func (c *TitleCache) TitleOf(ctx context.Context, id models.NodeID) (string, error) {
	if t, ok := c.titles.Get(id); ok {
		metrics.TitleCacheTotal.WithLabelValues("hit").Inc()
		return t, nil
	}

	metrics.TitleCacheTotal.WithLabelValues("miss").Inc()

	val, err := c.shared(ctx, "i:"+strconv.FormatUint(uint64(id), 10), func(ctx context.Context) (any, error) {
		t, err := c.next.TitleOf(ctx, id)
		if err != nil {
			return nil, err
		}

		c.remember(id, t)

		return t, nil
	})
	if err != nil {
		return "", err
	}

	t, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("title cache: unexpected singleflight result type %T", val)
	}

	return t, nil
}

// TitlesOf implements domain.BatchTitler, querying the wrapped provider only
// for ids not already cached.
func (c *TitleCache) TitlesOf(ctx context.Context, ids []models.NodeID) (map[models.NodeID]string, error) {
	out := make(map[models.NodeID]string, len(ids))
	missing := make([]models.NodeID, 0, len(ids))

	for _, id := range ids {
		if t, ok := c.titles.Get(id); ok {
			out[id] = t
			continue
		}

		missing = append(missing, id)
	}

	metrics.TitleCacheTotal.WithLabelValues("hit").Add(float64(len(out)))

	if len(missing) == 0 {
		return out, nil
	}

	metrics.TitleCacheTotal.WithLabelValues("miss").Add(float64(len(missing)))

	if bt, ok := c.next.(domain.BatchTitler); ok {
		fetched, err := bt.TitlesOf(ctx, missing)
		if err != nil {
			return nil, err
		}

		for id, t := range fetched {
			c.remember(id, t)
			out[id] = t
		}

		return out, nil
	}

	for _, id := range missing {
		t, err := c.TitleOf(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		out[id] = t
	}

	return out, nil
}

// Neighbors implements domain.GraphDataProvider.
func (c *TitleCache) Neighbors(ctx context.Context, ids []models.NodeID, dir models.Direction, fn domain.NeighborFunc) error {
	return c.next.Neighbors(ctx, ids, dir, fn)
}

// shared runs fn once per key across concurrent callers. The shared call is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx is done. Store queries carry their own timeout.
func (c *TitleCache) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *TitleCache) remember(id models.NodeID, title string) {
	c.ids.Add(title, id)
	c.titles.Add(id, title)
}
