// cache.go
package querier

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// CachePolicy tunes an injectable TableCache. The zero value emulates
// unbounded retention with no staleness, matching the historical
// process-wide cache behavior.
type CachePolicy struct {
	TTL        time.Duration // entry age before a Get reports a miss; 0 = never stale
	MaxEntries int           // entry count bound, oldest evicted first; 0 = unbounded
}

// TableCache stores parsed tables keyed by source path. At most one entry
// exists per path; Put overwrites. Concurrent fetches for the same
// uncached path collapse into one upstream call via GetOrFill.
//
// Safe for use from multiple goroutines.
type TableCache struct {
	policy   CachePolicy
	entries  *xsync.Map[string, *CachedTable]
	inflight *xsync.Map[string, *inflightFill]
}

type inflightFill struct {
	done  chan struct{}
	table *Table
	err   error
}

// NewTableCache creates a cache with the given policy.
func NewTableCache(policy CachePolicy) *TableCache {
	return &TableCache{
		policy:   policy,
		entries:  xsync.NewMap[string, *CachedTable](),
		inflight: xsync.NewMap[string, *inflightFill](),
	}
}

// Get returns the cached table for path, or false on a miss. Entries
// older than the policy TTL count as misses and are dropped so they do
// not accumulate while unqueried paths go stale.
func (c *TableCache) Get(path string) (*CachedTable, bool) {
	entry, ok := c.entries.Load(path)
	if !ok {
		return nil, false
	}
	if c.policy.TTL > 0 {
		age := time.Since(time.UnixMilli(entry.Timestamp))
		if age > c.policy.TTL {
			c.entries.Delete(path)
			return nil, false
		}
	}
	return entry, true
}

// Put stores table for path, stamping the current wall clock and
// overwriting any previous entry.
func (c *TableCache) Put(path string, table *Table) {
	c.entries.Store(path, &CachedTable{Table: table, Timestamp: time.Now().UnixMilli()})
	c.evict()
}

// Invalidate drops the entry for path, if any.
func (c *TableCache) Invalidate(path string) {
	c.entries.Delete(path)
}

// Len reports the number of cached entries.
func (c *TableCache) Len() int {
	return c.entries.Size()
}

// GetOrFill returns the cached table for path or runs fill to produce it.
// Concurrent callers for the same path share a single fill invocation and
// its outcome; the winner stores the result before releasing waiters.
// Fill errors are not cached.
func (c *TableCache) GetOrFill(ctx context.Context, path string, fill func(context.Context) (*Table, error)) (*Table, error) {
	if entry, ok := c.Get(path); ok {
		return entry.Table, nil
	}

	f := &inflightFill{done: make(chan struct{})}
	winner, loaded := c.inflight.LoadOrStore(path, f)
	if loaded {
		select {
		case <-winner.done:
			return winner.table, winner.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// A previous winner may have completed between our Get miss and the
	// LoadOrStore; re-check before fetching.
	if entry, ok := c.Get(path); ok {
		f.table = entry.Table
		c.finish(path, f)
		return entry.Table, nil
	}

	f.table, f.err = fill(ctx)
	if f.err == nil {
		c.Put(path, f.table)
	}
	c.finish(path, f)
	return f.table, f.err
}

func (c *TableCache) finish(path string, f *inflightFill) {
	c.inflight.Delete(path)
	close(f.done)
}

// evict enforces MaxEntries by removing the oldest-stamped entry until
// the cache fits the bound.
func (c *TableCache) evict() {
	if c.policy.MaxEntries <= 0 {
		return
	}
	for c.entries.Size() > c.policy.MaxEntries {
		var (
			oldestPath string
			oldest     int64
		)
		c.entries.Range(func(path string, entry *CachedTable) bool {
			if oldestPath == "" || entry.Timestamp < oldest {
				oldestPath = path
				oldest = entry.Timestamp
			}
			return true
		})
		if oldestPath == "" {
			return
		}
		c.entries.Delete(oldestPath)
	}
}
