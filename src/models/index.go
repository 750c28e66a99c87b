package models

import "errors"

// ErrDuplicateKey is raised by a unique Index when Insert finds the key
// already occupied. The engine package wraps this as ErrUniqueConstraintViolation
// before it reaches the caller.
var ErrDuplicateKey = errors.New("duplicate key")

// IndexStore is the pluggable backing structure behind an Index: a mapping
// from a projected key to the set of entities currently registered under
// that key. Concrete implementations (btreeindex.Store, hashindex.Store)
// know nothing about entity types, uniqueness, or constraints — that is
// Index's job.
type IndexStore interface {
	Put(key EntityKey, entity any)
	Remove(key EntityKey, entity any)
	Get(key EntityKey) []any
	All() []any
}

// IndexHandle is the type-erased contract the engine drives. It is
// satisfied by *Index.
type IndexHandle interface {
	Name() string
	IsPrimary() bool
	IsUnique() bool
	KeyMembers() []string
	KeyOf(entity any) EntityKey
	Insert(entity any) error
	Delete(entity any) error
	Lookup(key EntityKey) []any
	All() []any
}

// Index adapts a key-projection function and an IndexStore to the
// IndexHandle contract, enforcing uniqueness when declared. Behaviour is
// undefined if an entity's key is mutated between an Insert and a matching
// Delete without an intervening delete+insert pair — callers (the engine's
// UpdatePath) are responsible for deleting under the old key before
// re-inserting under the new one.
type Index struct {
	name       string
	primary    bool
	unique     bool
	keyMembers []string
	keyFn      func(entity any) EntityKey
	store      IndexStore
}

// NewIndex builds an Index. primary indexes are always treated as unique.
func NewIndex(name string, primary, unique bool, keyMembers []string, keyFn func(any) EntityKey, store IndexStore) *Index {
	return &Index{
		name:       name,
		primary:    primary,
		unique:     unique,
		keyMembers: keyMembers,
		keyFn:      keyFn,
		store:      store,
	}
}

func (ix *Index) Name() string         { return ix.name }
func (ix *Index) IsPrimary() bool      { return ix.primary }
func (ix *Index) IsUnique() bool       { return ix.unique || ix.primary }
func (ix *Index) KeyMembers() []string { return ix.keyMembers }

func (ix *Index) KeyOf(entity any) EntityKey {
	return ix.keyFn(entity)
}

// Insert makes entity findable under its current key. Fails with
// ErrDuplicateKey if the index is unique and any entity (entity itself
// included) is already registered under the key.
func (ix *Index) Insert(entity any) error {
	key := ix.keyFn(entity)
	if ix.IsUnique() {
		if existing := ix.store.Get(key); len(existing) > 0 {
			return ErrDuplicateKey
		}
	}
	ix.store.Put(key, entity)
	return nil
}

// Delete removes entity from the index under its current key.
func (ix *Index) Delete(entity any) error {
	key := ix.keyFn(entity)
	ix.store.Remove(key, entity)
	return nil
}

// Lookup returns every entity currently registered under key.
func (ix *Index) Lookup(key EntityKey) []any {
	return ix.store.Get(key)
}

// All returns every entity currently registered in the index, in whatever
// order the backing store holds them — the full table scan a predicate
// plan falls back to when it has no usable key to look up.
func (ix *Index) All() []any {
	return ix.store.All()
}
