package resource

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State describes the freshness of a cached resource list.
type State int

const (
	// StateEmpty means the kind has never been fetched successfully; the
	// last fetch failed or returned nothing.
	StateEmpty State = iota
	// StatePopulated means the cached list came from a successful fetch.
	StatePopulated
	// StateStale means the cached list is still served but should be
	// re-fetched on the next Get.
	StateStale
)

// Fetcher retrieves the current values for a resource kind from an
// external source, typically by invoking the wrapped CLI.
type Fetcher interface {
	Fetch(ctx context.Context, kind string) ([]string, error)
}

type entry struct {
	values      []string
	state       State
	refreshedAt time.Time
}

// Cache memoizes dynamically fetched resource values per kind. Entries are
// populated lazily on first access and replaced wholesale on refresh, so a
// concurrent reader always observes a complete list, old or new.
//
// Fetch failures degrade to an empty cached list rather than surfacing an
// error; completion simply has no dynamic candidates until the next refresh.
type Cache struct {
	fetcher Fetcher
	kinds   []string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewCache creates a Cache over the given fetcher. kinds lists the resource
// kinds RefreshAll covers; timeout bounds each external fetch.
func NewCache(fetcher Fetcher, kinds []string, timeout time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		kinds:   kinds,
		timeout: timeout,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Get returns the cached values for kind, fetching them first if the kind
// has never been loaded or was marked stale. The returned slice must be
// treated as read-only.
func (c *Cache) Get(ctx context.Context, kind string) []string {
	c.mu.RLock()
	e, ok := c.entries[kind]
	c.mu.RUnlock()

	if ok && e.state == StatePopulated {
		return e.values
	}
	if ok && e.state == StateEmpty {
		// A failed fetch stays empty until an explicit refresh; retrying
		// on every keystroke would stall the prompt.
		return e.values
	}

	return c.Refresh(ctx, kind, false)
}

// Refresh re-fetches kind and atomically replaces its cached values. When
// force is false and the entry is already populated, the cached values are
// returned as-is. A fetch failure is logged and recorded as an empty entry.
func (c *Cache) Refresh(ctx context.Context, kind string, force bool) []string {
	if !force {
		c.mu.RLock()
		e, ok := c.entries[kind]
		c.mu.RUnlock()
		if ok && e.state == StatePopulated {
			return e.values
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	values, err := c.fetcher.Fetch(fetchCtx, kind)
	state := StatePopulated
	if err != nil {
		c.logger.Warn("resource fetch failed",
			zap.String("kind", kind), zap.Error(err))
		values = []string{}
		state = StateEmpty
	}

	e := &entry{
		values:      values,
		state:       state,
		refreshedAt: time.Now(),
	}

	c.mu.Lock()
	c.entries[kind] = e
	c.mu.Unlock()

	return e.values
}

// RefreshAll refreshes every known kind. It is typically run on its own
// goroutine from the refresh key binding; Get calls racing with it keep
// returning the prior values until each entry is replaced.
func (c *Cache) RefreshAll(ctx context.Context, force bool) {
	for _, kind := range c.kinds {
		c.Refresh(ctx, kind, force)
	}
}

// MarkStale flags kind so the next Get re-fetches it. The current values
// keep being served in the meantime.
func (c *Cache) MarkStale(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[kind]; ok && e.state == StatePopulated {
		replacement := *e
		replacement.state = StateStale
		c.entries[kind] = &replacement
	}
}

// State reports the freshness of kind. Kinds never fetched report StateEmpty.
func (c *Cache) State(kind string) State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[kind]; ok {
		return e.state
	}
	return StateEmpty
}

// LastRefresh returns the time of the most recent fetch attempt across all
// kinds, or the zero time if nothing has been fetched yet.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var latest time.Time
	for _, e := range c.entries {
		if e.refreshedAt.After(latest) {
			latest = e.refreshedAt
		}
	}
	return latest
}
