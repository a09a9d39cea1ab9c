package chat

import "slices"

// ordered is a string keyed map that remembers insertion order.
type ordered[V any] struct {
	keys   []string
	values map[string]V
}

func newOrdered[V any]() ordered[V] {
	return ordered[V]{values: make(map[string]V)}
}

func (o *ordered[V]) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *ordered[V]) get(key string) (V, bool) {
	v, ok := o.values[key]
	return v, ok
}

// put inserts or replaces. Replacing keeps the original position.
func (o *ordered[V]) put(key string, v V) {
	if !o.has(key) {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *ordered[V]) remove(key string) (V, bool) {
	v, ok := o.values[key]
	if !ok {
		return v, false
	}
	delete(o.values, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	return v, true
}

// list returns the values in insertion order, leaving out the entry stored
// under skip (pass "" to keep everything).
func (o *ordered[V]) list(skip string) []V {
	out := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		if k == skip {
			continue
		}
		out = append(out, o.values[k])
	}
	return out
}

func (o *ordered[V]) len() int {
	return len(o.keys)
}
