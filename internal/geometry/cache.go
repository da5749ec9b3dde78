package geometry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"seatmap/internal/layout"
	"seatmap/internal/shared/constants"
	"seatmap/pkg/cache"
	"seatmap/pkg/logger"
)

const defaultCacheCapacity = 256

// Key identifies one render. A new layout version always produces a new
// key, so entries never need to be updated in place.
type Key struct {
	VenueID string
	Version uint64
	Viewport
}

func (k Key) String() string {
	return constants.BuildGeometryKey(k.VenueID, k.Version, k.Width, k.Height, k.Padding)
}

// Cache memoises Compute. Concurrent misses for the same key share a
// single computation. When a remote cache is configured, computed
// geometry is also written there so other replicas can reuse it.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*Geometry
	order    []Key
	capacity int

	group  singleflight.Group
	remote cache.Service
	ttl    time.Duration
	opts   Options
	log    *logger.Logger
}

type CacheOption func(*Cache)

// WithRemote adds a shared second-level cache.
func WithRemote(svc cache.Service, ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.remote = svc
		c.ttl = ttl
	}
}

func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

func WithLogger(l *logger.Logger) CacheOption {
	return func(c *Cache) { c.log = l }
}

func NewCache(opts Options, options ...CacheOption) *Cache {
	c := &Cache{
		entries:  make(map[Key]*Geometry),
		capacity: defaultCacheCapacity,
		ttl:      constants.TTL_GEOMETRY,
		opts:     opts,
		log:      logger.GetDefault(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Get returns the geometry of snap rendered into vp, computing it at most
// once per key.
func (c *Cache) Get(ctx context.Context, snap *layout.Snapshot, vp Viewport) (*Geometry, error) {
	if snap == nil {
		return nil, ErrNoLayout
	}
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	key := Key{VenueID: snap.VenueID(), Version: snap.Version(), Viewport: vp}
	if g := c.lookup(key); g != nil {
		return g, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		if g := c.lookup(key); g != nil {
			return g, nil
		}
		if g := c.fetchRemote(ctx, key); g != nil {
			c.store(key, g)
			return g, nil
		}

		start := time.Now()
		g, err := Compute(snap, vp, c.opts)
		if err != nil {
			return nil, err
		}
		c.log.LogGeometryComputed(ctx, key.VenueID, key.Version, len(g.Shapes), time.Since(start))
		c.log.LogLayoutIssues(ctx, key.VenueID, len(g.Issues))

		c.store(key, g)
		c.pushRemote(ctx, key, g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Geometry), nil
}

// Invalidate drops every cached render of a venue.
func (c *Cache) Invalidate(ctx context.Context, venueID string) error {
	c.mu.Lock()
	kept := c.order[:0]
	for _, k := range c.order {
		if k.VenueID == venueID {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
	c.mu.Unlock()

	if c.remote == nil {
		return nil
	}
	if err := c.remote.DeletePattern(ctx, constants.BuildGeometryVenuePattern(venueID)); err != nil {
		return fmt.Errorf("invalidate geometry of venue %s: %w", venueID, err)
	}
	return nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key Key) *Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key]
}

// store inserts g, evicting the oldest entries beyond capacity.
func (c *Cache) store(key Key, g *Geometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = g
	c.order = append(c.order, key)
	for len(c.order) > c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *Cache) fetchRemote(ctx context.Context, key Key) *Geometry {
	if c.remote == nil {
		return nil
	}
	var g Geometry
	if err := c.remote.Get(ctx, key.String(), &g); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.WarnContext(ctx, "Geometry cache read failed", "key", key.String(), "error", err)
		}
		return nil
	}
	g.reindex()
	return &g
}

func (c *Cache) pushRemote(ctx context.Context, key Key, g *Geometry) {
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key.String(), g, c.ttl); err != nil {
		c.log.WarnContext(ctx, "Geometry cache write failed", "key", key.String(), "error", err)
	}
}
