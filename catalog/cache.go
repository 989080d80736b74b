package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Cache accumulates fetched catalog pages into an identity-keyed map.
//
// Once populated the cache is never refreshed implicitly: GetVideo serves
// whatever the last fetch left behind. Network calls happen outside the lock;
// only the map update is serialized.
type Cache struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu        sync.RWMutex
	videos    map[int64]*Video
	populated bool
}

// NewCache creates an empty cache over the given fetcher.
func NewCache(fetcher Fetcher, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		videos:  make(map[int64]*Video),
	}
}

// FetchAll drains the upstream catalog page by page, starting at page 1.
//
// It stops at the first empty page or once the number of retrieved videos
// reaches the total reported by the upstream, whichever comes first. On
// success the cache contents are replaced by the retrieved videos, which are
// returned in fetch order. On error the cache is left untouched.
func (c *Cache) FetchAll(ctx context.Context) ([]*Video, error) {
	var all []*Video

	for page := 1; ; page++ {
		p, err := c.fetcher.FetchPage(ctx, page)
		if err != nil {
			c.logger.Warn("catalog fetch failed",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			return nil, err
		}

		c.logger.Debug("fetched catalog page",
			slog.Int("page", page),
			slog.Int("videos", len(p.Videos)),
			slog.Int("total", p.Total),
		)

		if len(p.Videos) == 0 {
			break
		}
		all = append(all, p.Videos...)
		if len(all) >= p.Total {
			break
		}
	}

	byID := make(map[int64]*Video, len(all))
	for _, v := range all {
		byID[v.ID] = v
	}

	c.mu.Lock()
	c.videos = byID
	c.populated = true
	c.mu.Unlock()

	c.logger.Info("catalog loaded", slog.Int("videos", len(byID)))
	return all, nil
}

// FetchPage requests exactly one page and merges it into the cache,
// inserting or replacing entries by ID. It returns the page's videos, or an
// empty slice when the page has none.
func (c *Cache) FetchPage(ctx context.Context, page int) ([]*Video, error) {
	p, err := c.fetcher.FetchPage(ctx, page)
	if err != nil {
		c.logger.Warn("catalog page fetch failed",
			slog.Int("page", page),
			slog.Any("error", err),
		)
		return nil, err
	}

	c.mu.Lock()
	for _, v := range p.Videos {
		c.videos[v.ID] = v
	}
	c.populated = true
	c.mu.Unlock()

	c.logger.Debug("merged catalog page",
		slog.Int("page", page),
		slog.Int("videos", len(p.Videos)),
	)

	if p.Videos == nil {
		return []*Video{}, nil
	}
	return p.Videos, nil
}

// GetVideo returns the cached video with the given ID.
// A full FetchAll runs first only if the cache has never been populated.
func (c *Cache) GetVideo(ctx context.Context, id int64) (*Video, error) {
	if !c.Populated() {
		if _, err := c.FetchAll(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	v, ok := c.videos[id]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return v, nil
}

// Videos returns a snapshot of the cache ordered by ID.
func (c *Cache) Videos() []*Video {
	c.mu.RLock()
	videos := make([]*Video, 0, len(c.videos))
	for _, v := range c.videos {
		videos = append(videos, v)
	}
	c.mu.RUnlock()

	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos
}

// Len returns the number of cached videos.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.videos)
}

// Populated reports whether any fetch has ever succeeded.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}
