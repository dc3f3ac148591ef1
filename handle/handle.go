// Package handle maps opaque 64-bit handles to in-process resources.
//
// Each entity type has its own [Table]. The entity type is encoded in
// the top byte of every handle a table issues, so a handle from one
// table is never valid in another. The remaining 56 bits are a
// sequence number that starts at 1 and is never reused, so a freed
// handle stays invalid forever.
package handle

import (
	"errors"
	"fmt"
	"iter"
	"sync"
)

// ErrNotFound is returned when freeing a handle that isn't live.
var ErrNotFound = errors.New("handle not found")

// Handle is an opaque reference to a resource held by a [Table].
//
// The zero Handle is never valid.
type Handle uint64

const (
	typeShift = 56
	seqMask   = 1<<typeShift - 1
)

// Type returns the entity type encoded in h.
func (h Handle) Type() Type { return Type(h >> typeShift) }

func (h Handle) seq() uint64 { return uint64(h) & seqMask }

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.Type(), h.seq())
}

// Type is an entity type.
type Type uint8

const (
	SceneItem Type = iota + 1
	Source
	Scene
)

func (t Type) String() string {
	switch t {
	case SceneItem:
		return "SceneItem"
	case Source:
		return "Source"
	case Scene:
		return "Scene"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Table is a set of live handles for one entity type.
//
// Allocate and Free are serialized against each other and against
// concurrent lookups. Lookups may run in parallel.
type Table[T comparable] struct {
	typ Type

	mu    sync.RWMutex
	last  uint64
	byH   map[Handle]T
	byVal map[T]Handle
}

// New returns an empty table whose handles carry typ.
func New[T comparable](typ Type) *Table[T] {
	if typ == 0 {
		panic("handle table type must not be zero")
	}
	return &Table[T]{
		typ:   typ,
		byH:   map[Handle]T{},
		byVal: map[T]Handle{},
	}
}

// Type returns the entity type of the table's handles.
func (t *Table[T]) Type() Type { return t.typ }

// Allocate returns a handle for v.
//
// If v already has a live handle, Allocate returns that handle rather
// than issuing a second one.
func (t *Table[T]) Allocate(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.byVal[v]; ok {
		return h
	}
	t.last++
	if t.last > seqMask {
		panic(fmt.Sprintf("%s handle space exhausted", t.typ))
	}
	h := Handle(uint64(t.typ)<<typeShift | t.last)
	t.byH[h] = v
	t.byVal[v] = h
	return h
}

// Find returns the resource h refers to. It reports false if h is
// not a live handle of this table.
func (t *Table[T]) Find(h Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.byH[h]
	return v, ok
}

// Lookup returns the live handle of v, if any.
func (t *Table[T]) Lookup(v T) (Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.byVal[v]
	return h, ok
}

// Free invalidates h. It returns ErrNotFound if h is not a live
// handle of this table.
func (t *Table[T]) Free(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.byH[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, h)
	}
	delete(t.byH, h)
	delete(t.byVal, v)
	return nil
}

// FreeValue invalidates the handle of v, if it has one.
func (t *Table[T]) FreeValue(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.byVal[v]; ok {
		delete(t.byH, h)
		delete(t.byVal, v)
	}
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byH)
}

// All iterates over a snapshot of the table's live handles.
func (t *Table[T]) All() iter.Seq2[Handle, T] {
	t.mu.RLock()
	snap := make(map[Handle]T, len(t.byH))
	for h, v := range t.byH {
		snap[h] = v
	}
	t.mu.RUnlock()
	return func(yield func(Handle, T) bool) {
		for h, v := range snap {
			if !yield(h, v) {
				return
			}
		}
	}
}
