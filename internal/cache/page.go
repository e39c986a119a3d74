package cache

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fortuna/hoops/internal/logging"
)

// DefaultSize is the number of pages kept when no size is given.
const DefaultSize = 512

// FetchFunc loads the body for url on a cache miss.
type FetchFunc func(ctx context.Context, url string) (string, error)

// PageCache holds raw page bodies keyed by URL for the life of the process.
// Only successful fetches are stored, so a failed URL is retried next time.
// Concurrent misses for one URL share a single fetch.
type PageCache struct {
	pages  *lru.Cache[string, string]
	flight singleflight.Group
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// NewPageCache creates a cache bounded to size pages.
func NewPageCache(size int, logger *zap.Logger) (*PageCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	pages, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "create page cache")
	}
	return &PageCache{
		pages:  pages,
		logger: logging.OrNop(logger).Named("cache"),
	}, nil
}

// GetOrFetch returns the cached body for url, calling fetch only on a miss.
func (c *PageCache) GetOrFetch(ctx context.Context, url string, fetch FetchFunc) (string, error) {
	if fetch == nil {
		return "", errors.New("fetch func is required")
	}

	if body, ok := c.pages.Get(url); ok {
		c.hits.Add(1)
		c.logger.Debug("page cache hit", zap.String("url", url))
		return body, nil
	}

	// The shared fetch ignores the leader's cancellation; each caller waits
	// on its own ctx. Callers that join an in-flight fetch count as hits.
	var fetched bool
	ch := c.flight.DoChan(url, func() (any, error) {
		if body, ok := c.pages.Get(url); ok {
			return body, nil
		}
		fetched = true
		c.misses.Add(1)

		body, err := fetch(context.WithoutCancel(ctx), url)
		if err != nil {
			return "", err
		}
		c.pages.Add(url, body)
		return body, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if !fetched {
			c.hits.Add(1)
		}
		return res.Val.(string), nil
	}
}

// Stats returns hit/miss counters and the current entry count.
func (c *PageCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.pages.Len(),
	}
}
