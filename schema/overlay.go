package schema

// Overlay is an insertion-ordered sparse mapping. Enumeration follows the
// order in which keys were first set; overwriting keeps the position.
// The zero value is ready to use.
type Overlay[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// Get returns the value stored for key.
func (o *Overlay[K, V]) Get(key K) (V, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key.
func (o *Overlay[K, V]) Set(key K, value V) {
	if o.values == nil {
		o.values = make(map[K]V)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key if present.
func (o *Overlay[K, V]) Delete(key K) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *Overlay[K, V]) Len() int {
	return len(o.keys)
}

// Keys returns a copy of the keys in enumeration order.
func (o *Overlay[K, V]) Keys() []K {
	out := make([]K, len(o.keys))
	copy(out, o.keys)
	return out
}

// Each calls fn for every entry in enumeration order.
func (o *Overlay[K, V]) Each(fn func(K, V)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

// Clone returns an independent copy.
func (o *Overlay[K, V]) Clone() Overlay[K, V] {
	var c Overlay[K, V]
	o.Each(c.Set)
	return c
}
