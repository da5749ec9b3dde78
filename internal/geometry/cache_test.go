package geometry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatmap/internal/layout"
	"seatmap/pkg/cache"
	"seatmap/pkg/logger"
)

// memoryRemote is a cache.Service backed by a map of JSON documents.
type memoryRemote struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{data: make(map[string][]byte)}
}

func (r *memoryRemote) Get(_ context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (r *memoryRemote) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = b
	return nil
}

func (r *memoryRemote) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *memoryRemote) DeletePattern(_ context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range r.data {
		if strings.HasPrefix(k, prefix) {
			delete(r.data, k)
		}
	}
	return nil
}

func (r *memoryRemote) Exists(_ context.Context, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}

func (r *memoryRemote) Ping(context.Context) error { return nil }

func TestCache_MemoisesByVersionAndViewport(t *testing.T) {
	ctx := context.Background()
	m := stadium(t)
	c := NewCache(DefaultOptions(), WithLogger(logger.Discard()))

	a, err := c.Get(ctx, m.Snapshot(), square)
	require.NoError(t, err)
	b, err := c.Get(ctx, m.Snapshot(), square)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	other, err := c.Get(ctx, m.Snapshot(), Viewport{Width: 600, Height: 400})
	require.NoError(t, err)
	assert.NotSame(t, a, other)

	require.NoError(t, m.SetWeight("east", 5))
	fresh, err := c.Get(ctx, m.Snapshot(), square)
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
	assert.Equal(t, m.Version(), fresh.Version)
	assert.Equal(t, 3, c.Len())
}

func TestCache_ConcurrentMissesShareOneResult(t *testing.T) {
	snap := stadium(t).Snapshot()
	c := NewCache(DefaultOptions(), WithLogger(logger.Discard()))

	const n = 32
	results := make([]*Geometry, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := c.Get(context.Background(), snap, square)
			assert.NoError(t, err)
			results[i] = g
		}(i)
	}
	wg.Wait()

	for _, g := range results[1:] {
		assert.Same(t, results[0], g)
	}
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	snap := stadium(t).Snapshot()
	c := NewCache(DefaultOptions(), WithCapacity(2), WithLogger(logger.Discard()))

	first, err := c.Get(ctx, snap, Viewport{Width: 100, Height: 100})
	require.NoError(t, err)
	_, err = c.Get(ctx, snap, Viewport{Width: 200, Height: 200})
	require.NoError(t, err)
	_, err = c.Get(ctx, snap, Viewport{Width: 300, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	again, err := c.Get(ctx, snap, Viewport{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	assert.Equal(t, first, again)
}

func TestCache_SharesThroughRemote(t *testing.T) {
	ctx := context.Background()
	snap := stadium(t).Snapshot()
	remote := newMemoryRemote()

	writer := NewCache(DefaultOptions(), WithRemote(remote, time.Minute), WithLogger(logger.Discard()))
	computed, err := writer.Get(ctx, snap, square)
	require.NoError(t, err)

	key := Key{VenueID: "arena", Version: snap.Version(), Viewport: square}.String()
	assert.True(t, remote.Exists(ctx, key))

	reader := NewCache(DefaultOptions(), WithRemote(remote, time.Minute), WithLogger(logger.Discard()))
	fetched, err := reader.Get(ctx, snap, square)
	require.NoError(t, err)
	assert.NotSame(t, computed, fetched)
	require.NotNil(t, fetched.Find("n2-r0-s1"), "decoded geometry is indexed")
	assert.Equal(t, computed.Find("n2-r0-s1").Arc, fetched.Find("n2-r0-s1").Arc)
}

func TestCache_InvalidateVenue(t *testing.T) {
	ctx := context.Background()
	remote := newMemoryRemote()
	c := NewCache(DefaultOptions(), WithRemote(remote, time.Minute), WithLogger(logger.Discard()))

	_, err := c.Get(ctx, stadium(t).Snapshot(), square)
	require.NoError(t, err)
	_, err = c.Get(ctx, theatre(t).Snapshot(), stage)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Invalidate(ctx, "arena"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"seatmap:geometry:venue:arena:*"}, remote.deleted)
	assert.Len(t, remote.data, 1)
}

func TestCache_RejectsInvalidViewport(t *testing.T) {
	c := NewCache(DefaultOptions(), WithLogger(logger.Discard()))
	_, err := c.Get(context.Background(), stadium(t).Snapshot(), Viewport{})
	assert.ErrorIs(t, err, ErrInvalidViewport)

	_, err = c.Get(context.Background(), (*layout.Snapshot)(nil), square)
	assert.ErrorIs(t, err, ErrNoLayout)
}
