package apiclient

import (
	"encoding/json"
	"sync"
	"time"
)

// Tag labels cached query results invalidated en masse by matching mutations.
type Tag string

const (
	TagUser    Tag = "user"
	TagPost    Tag = "post"
	TagSociety Tag = "society"
)

// retentionDefault marks endpoints that use the client-wide retention.
const retentionDefault = time.Duration(-1)

// queryCache holds the last successful payload per operation+parameters
// pair. Entries track active subscribers; an entry with no subscribers is
// evicted after its retention elapses (immediately for zero retention), and
// a mutation with an overlapping tag marks it stale so the next access
// refetches.
type queryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	payload     json.RawMessage
	tags        []Tag
	retention   time.Duration
	storedAt    time.Time
	stale       bool
	subscribers int
	evict       *time.Timer
}

func newQueryCache() *queryCache {
	return &queryCache{
		entries: make(map[string]*cacheEntry),
	}
}

func queryKey(operation, params string) string {
	if params == "" {
		return operation
	}

	return operation + "(" + params + ")"
}

// acquire subscribes to a fresh cached entry. It reports a miss for absent
// or stale entries; the caller then fetches and calls store.
func (qc *queryCache) acquire(key string) (json.RawMessage, func(), bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	entry, ok := qc.entries[key]
	if !ok || entry.stale {
		return nil, nil, false
	}

	entry.subscribers++

	if entry.evict != nil {
		entry.evict.Stop()
		entry.evict = nil
	}

	return entry.payload, qc.releaseFunc(key, entry), true
}

// store saves a fetched payload under the given tags and subscribes the
// caller to it, replacing any previous entry for the key.
func (qc *queryCache) store(key string, payload json.RawMessage, tags []Tag, retention time.Duration) func() {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if old, ok := qc.entries[key]; ok && old.evict != nil {
		old.evict.Stop()
	}

	entry := &cacheEntry{
		payload:     payload,
		tags:        tags,
		retention:   retention,
		storedAt:    time.Now(),
		stale:       false,
		subscribers: 1,
		evict:       nil,
	}
	qc.entries[key] = entry

	return qc.releaseFunc(key, entry)
}

// invalidate marks stale every entry whose tag set intersects the given
// tags and returns the number of entries affected.
func (qc *queryCache) invalidate(tags []Tag) int {
	invalidated := make(map[Tag]bool, len(tags))
	for _, tag := range tags {
		invalidated[tag] = true
	}

	qc.mu.Lock()
	defer qc.mu.Unlock()

	var count int

	for _, entry := range qc.entries {
		for _, tag := range entry.tags {
			if invalidated[tag] {
				entry.stale = true
				count++

				break
			}
		}
	}

	return count
}

// releaseFunc ends one subscription to the entry. When the last subscriber
// releases, the entry is dropped immediately (zero retention) or after the
// retention elapses with no new subscribers. Safe to call more than once.
func (qc *queryCache) releaseFunc(key string, entry *cacheEntry) func() {
	var once sync.Once

	return func() {
		once.Do(func() {
			qc.mu.Lock()
			defer qc.mu.Unlock()

			entry.subscribers--
			if entry.subscribers > 0 {
				return
			}

			if entry.retention <= 0 {
				qc.drop(key, entry)

				return
			}

			entry.evict = time.AfterFunc(entry.retention, func() {
				qc.mu.Lock()
				defer qc.mu.Unlock()

				if entry.subscribers == 0 {
					qc.drop(key, entry)
				}
			})
		})
	}
}

// drop removes the entry unless the key has been replaced since.
func (qc *queryCache) drop(key string, entry *cacheEntry) {
	if current, ok := qc.entries[key]; ok && current == entry {
		delete(qc.entries, key)
	}
}
