package core

import "github.com/google/uuid"

// Disposable is anything holding engine- or GPU-owned state that must be
// released before the device is torn down.
type Disposable interface {
	Dispose() error
}

type ObjectEntry struct {
	Name   string
	Object interface{}
}

// ObjectRegistry is the application-wide index of loaded objects, consulted
// for teardown ordering and debug inspection.
type ObjectRegistry struct {
	entries map[uuid.UUID]ObjectEntry
}

func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{
		entries: make(map[uuid.UUID]ObjectEntry),
	}
}

func (r *ObjectRegistry) Register(id uuid.UUID, name string, obj interface{}) {
	r.entries[id] = ObjectEntry{Name: name, Object: obj}
}

func (r *ObjectRegistry) Unregister(id uuid.UUID) {
	delete(r.entries, id)
}

func (r *ObjectRegistry) Lookup(id uuid.UUID) (ObjectEntry, bool) {
	entry, ok := r.entries[id]
	return entry, ok
}

func (r *ObjectRegistry) Len() int {
	return len(r.entries)
}

// AutoDisposeRegistry collects disposables that are released together at
// application teardown, in reverse tracking order.
type AutoDisposeRegistry struct {
	items []Disposable
}

func NewAutoDisposeRegistry() *AutoDisposeRegistry {
	return &AutoDisposeRegistry{}
}

func (r *AutoDisposeRegistry) Track(d Disposable) {
	if d != nil {
		r.items = append(r.items, d)
	}
}

func (r *AutoDisposeRegistry) Len() int {
	return len(r.items)
}

func (r *AutoDisposeRegistry) DisposeAll() error {
	var firstErr error
	for i := len(r.items) - 1; i >= 0; i-- {
		if err := r.items[i].Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.items = nil
	return firstErr
}
