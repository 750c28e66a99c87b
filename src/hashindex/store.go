// Package hashindex provides a hashed models.IndexStore: lookups are O(1)
// average rather than the ordered store's O(log n), at the cost of no range
// scan. It is grounded on the teacher's hash index service, but its bucket
// map is borrowed from FeatureBaseDB's rbf package, which keeps its page
// table in a benbjohnson/immutable.Map hashed with cespare/xxhash — the
// same pairing serves an index bucket map equally well.
package hashindex

import (
	"sync"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash"

	"relstore/src/models"
)

// entityKeyHasher adapts models.EntityKey to immutable.Hasher, hashing with
// xxhash the way fragment.go checksums a block.
type entityKeyHasher struct{}

func (entityKeyHasher) Hash(key interface{}) uint32 {
	h := xxhash.New()
	h.Write([]byte(key.(models.EntityKey)))
	return uint32(h.Sum64())
}

func (entityKeyHasher) Equal(a, b interface{}) bool {
	return a.(models.EntityKey) == b.(models.EntityKey)
}

// Store is a hashed models.IndexStore: an immutable.Map snapshot swapped
// under a mutex on every write, so concurrent Get calls never observe a
// partially-updated bucket.
type Store struct {
	mu      sync.RWMutex
	buckets *immutable.Map
}

// NewStore creates an empty hashed index store.
func NewStore() *Store {
	return &Store{buckets: immutable.NewMap(entityKeyHasher{})}
}

// Put registers entity under key, appending to any existing bucket.
func (s *Store) Put(key models.EntityKey, entity any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bucket []any
	if v, ok := s.buckets.Get(key); ok {
		bucket = v.([]any)
	}
	bucket = append(append([]any{}, bucket...), entity)
	s.buckets = s.buckets.Set(key, bucket)
}

// Remove drops entity from key's bucket.
func (s *Store) Remove(key models.EntityKey, entity any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.buckets.Get(key)
	if !ok {
		return
	}
	existing := v.([]any)
	remaining := make([]any, 0, len(existing))
	for _, e := range existing {
		if e != entity {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		s.buckets = s.buckets.Delete(key)
		return
	}
	s.buckets = s.buckets.Set(key, remaining)
}

// Get returns the entities currently registered under key.
func (s *Store) Get(key models.EntityKey) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.buckets.Get(key)
	if !ok {
		return nil
	}
	existing := v.([]any)
	out := make([]any, len(existing))
	copy(out, existing)
	return out
}

// All returns every entity currently held, in the map's iteration order.
func (s *Store) All() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []any
	itr := s.buckets.Iterator()
	for !itr.Done() {
		_, v := itr.Next()
		out = append(out, v.([]any)...)
	}
	return out
}
