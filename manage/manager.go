// Package manage implements the collection-management pattern shared by the
// user and student screens: fetch-on-mount with graceful degradation,
// client-side filtering and sorting, and optimistic local mutation from
// confirmed server responses.
package manage

import (
	"sort"
	"strings"
	"sync"
)

// ErrorNotifier receives every failed mutation as a human-readable message;
// a failed load additionally carries the degraded state. Views plug their
// notification surface in here.
type ErrorNotifier func(msg string)

// collection owns one screen's list snapshot. It is not shared across
// screens. Mutations are optimistic: local state changes only from a
// confirmed server response, never from intent. Fallback mode is the one
// exception: placeholder rows mutate locally and nothing is written back to
// the server until a real fetch replaces the list.
//
// Concurrent mutations are not queued or serialized; they race at the
// network layer and apply in server-response order. That is an accepted
// limitation of the pattern, not a bug to paper over here.
type collection[T any] struct {
	mu sync.Mutex

	id    func(T) string
	items []T

	// gen guards against stale responses: every reload and Close bumps it,
	// and any response dispatched under an older generation is dropped
	// instead of written to dead state.
	gen    uint64
	closed bool

	loadErr    error
	fallback   bool // items are locally generated placeholder data
	submitting bool
}

func newCollection[T any](id func(T) string) *collection[T] {
	return &collection[T]{id: id}
}

// snapshot returns a copy of the current items; callers may filter and sort
// it freely without holding any lock.
func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *collection[T]) loadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *collection[T]) usingFallback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallback
}

func (c *collection[T]) isSubmitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// close marks the collection dead (the screen unmounted); any response still
// in flight becomes a no-op.
func (c *collection[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
}

// beginLoad starts a (re)load generation.
func (c *collection[T]) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// finishLoad installs a load outcome, unless the response is stale. On
// failure the fallback dataset (when provided) replaces the list so the
// screen degrades instead of blanking; the error stays visible either way.
func (c *collection[T]) finishLoad(gen uint64, items []T, err error, fallback func() []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	if err != nil {
		c.loadErr = err
		if fallback != nil {
			c.items = fallback()
			c.fallback = true
		} else {
			c.items = nil
			c.fallback = false
		}
		return
	}
	c.items = items
	c.loadErr = nil
	c.fallback = false
}

// beginSubmit flips the submitting flag; it reports the current generation
// so the paired apply can detect staleness. endSubmit must be deferred at
// every mutation call site so the flag can never stick after the call
// settles.
func (c *collection[T]) beginSubmit() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = true
	return c.gen
}

func (c *collection[T]) endSubmit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
}

func (c *collection[T]) current(gen uint64) bool {
	return !c.closed && gen == c.gen
}

// prepend installs a newly created record at the head of the list.
func (c *collection[T]) prepend(gen uint64, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		return
	}
	c.items = append([]T{item}, c.items...)
}

// replace swaps the one record with a matching identifier; no re-fetch.
func (c *collection[T]) replace(gen uint64, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		return
	}
	id := c.id(item)
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
}

// remove drops the record with the given identifier, and only that one.
func (c *collection[T]) remove(gen uint64, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		return
	}
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *collection[T]) find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Sort directions
const (
	Ascending  = "asc"
	Descending = "desc"
)

// sortBy orders items in place by a string key, stable, ascending or
// descending. Missing keys compare as the empty string.
func sortBy[T any](items []T, key func(T) string, dir string) {
	if key == nil {
		return
	}
	desc := dir == Descending
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(key(items[i])), strings.ToLower(key(items[j]))
		if desc {
			return a > b
		}
		return a < b
	})
}

// matchesSearch does the case-insensitive substring match used by every
// screen's search box.
func matchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
