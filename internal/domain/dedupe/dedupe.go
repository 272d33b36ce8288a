// Package dedupe tracks idempotency keys for saved recommendations.
package dedupe

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSize bounds the number of keys kept when no size is configured.
const DefaultMaxSize = 10000

// Deduper remembers which history id an idempotency key produced.
type Deduper interface {
	// SeenAndRecord atomically looks up key and records id for it if the key is new.
	// It returns the id stored first and true when the key was already seen.
	SeenAndRecord(ctx context.Context, key, id string) (string, bool)

	// Unrecord forgets key so a failed save can be retried under it.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps the most recently used keys in an LRU cache.
type inMemoryDeduper struct {
	maxSize int
	cache   *lru.Cache[string, string]
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize <= 0 {
		d.maxSize = DefaultMaxSize
	}

	// lru.New only fails for a non-positive size.
	c, err := lru.New[string, string](d.maxSize)
	if err != nil {
		panic(err)
	}
	d.cache = c
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, id string) (string, bool) {
	prev, ok, _ := d.cache.PeekOrAdd(key, id)
	if ok {
		return prev, true
	}
	return id, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.cache.Remove(key)
}

func (d *inMemoryDeduper) Size() int64 {
	return int64(d.cache.Len())
}
