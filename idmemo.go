package selfdep

import (
	"hash/fnv"
	"sync/atomic"
	"unsafe"
)

// IdMemo is a single-slot cache keyed by an identity-derived hash. It holds
// at most one (key, value) pair and storing a new key unconditionally
// evicts the previous one. This is deliberately not a general cache: the
// common case is one canonical owner per running handler, and a single slot
// keeps the hit path to one atomic load. A descriptor shared by many
// distinct owners rebuilds its wrapper on every alternation.
type IdMemo[V any] struct {
	slot atomic.Pointer[memoEntry[V]]
}

type memoEntry[V any] struct {
	key   uint64
	value V
}

// Contains reports whether the slot currently holds key.
func (m *IdMemo[V]) Contains(key uint64) bool {
	e := m.slot.Load()
	return e != nil && e.key == key
}

// Value returns the most recently stored value, or ErrEmptyMemo if nothing
// has ever been stored.
func (m *IdMemo[V]) Value() (V, error) {
	e := m.slot.Load()
	if e == nil {
		var zero V
		return zero, ErrEmptyMemo
	}
	return e.value, nil
}

// Store replaces the slot with (key, value) as a single unit and returns
// value unchanged. Concurrent stores race benignly: one entry wins, the
// loser's value is still returned to its caller and is simply rebuilt on a
// later lookup.
func (m *IdMemo[V]) Store(key uint64, value V) V {
	m.slot.Store(&memoEntry[V]{key: key, value: value})
	return value
}

// lookup is the coherent hit path: a single load, so a concurrent Store
// can never interleave between a Contains and a Value.
func (m *IdMemo[V]) lookup(key uint64) (V, bool) {
	e := m.slot.Load()
	if e == nil || e.key != key {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Key derives a cache key from the identities of items. Each item
// contributes its object identity, not its value, and the order of items
// matters. Identity is the pointer word of the interface value: the
// address of the referenced object for pointer-like items, the address of
// the boxed copy for plain values, and the runtime type pointer for
// reflect.Type items. An address can be reused once the original object is
// collected, so two distinct objects can in principle produce the same
// key. That is a known limitation of identity keying, not a bug.
func (m *IdMemo[V]) Key(items ...any) uint64 {
	h := fnv.New64a()
	for _, item := range items {
		id := uint64(identityOf(item))
		b := (*[8]byte)(unsafe.Pointer(&id))[:]
		_, _ = h.Write(b)
	}
	return h.Sum64()
}

// identityOf extracts the data word of an interface value as a
// pointer-like handle. nil has identity 0.
func identityOf(v any) uintptr {
	if v == nil {
		return 0
	}
	type eface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	return uintptr((*eface)(unsafe.Pointer(&v)).data)
}
