// Package registry provides the keyed, insertion-ordered store used for every
// entity kind.
package registry

import "errors"

var (
	ErrDuplicate = errors.New("duplicate key")
	ErrMissing   = errors.New("missing key")
)

// Registry stores values by unique key and remembers insertion order.
// It is not safe for concurrent use.
type Registry[K comparable, V any] struct {
	keys  []K
	items map[K]V
}

func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{items: make(map[K]V)}
}

// Insert stores v under id. It fails with ErrDuplicate, leaving the registry
// untouched, when id is already present.
func (r *Registry[K, V]) Insert(id K, v V) error {
	if _, ok := r.items[id]; ok {
		return ErrDuplicate
	}
	r.items[id] = v
	r.keys = append(r.keys, id)
	return nil
}

// Update replaces the value of an existing key without changing its position.
func (r *Registry[K, V]) Update(id K, v V) error {
	if _, ok := r.items[id]; !ok {
		return ErrMissing
	}
	r.items[id] = v
	return nil
}

func (r *Registry[K, V]) Get(id K) (V, bool) {
	v, ok := r.items[id]
	return v, ok
}

func (r *Registry[K, V]) Has(id K) bool {
	_, ok := r.items[id]
	return ok
}

// Remove deletes id unconditionally. Guarded deletion lives in the engine.
func (r *Registry[K, V]) Remove(id K) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for i, k := range r.keys {
		if k == id {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// List returns the values in insertion order.
func (r *Registry[K, V]) List() []V {
	out := make([]V, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.items[k])
	}
	return out
}

func (r *Registry[K, V]) Keys() []K {
	out := make([]K, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Registry[K, V]) Len() int {
	return len(r.keys)
}
