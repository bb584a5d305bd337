// Package orderedmap provides a small string-keyed map that preserves
// insertion order, used by Attr key-value pairs where downstream renderers
// must reproduce the author's original attribute ordering.
package orderedmap

// Map is an insertion-ordered string-to-string map. The zero value is not
// usable; construct with New.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty ordered map.
func New() *Map {
	return &Map{values: map[string]string{}}
}

// Set inserts or updates key. Existing keys keep their original position.
func (m *Map) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key, preserving the order of remaining keys.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The returned slice must not be mutated.
func (m *Map) Keys() []string { return m.keys }

// Range calls fn for each entry in insertion order, stopping early if fn returns false.
func (m *Map) Range(fn func(key, value string) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := New()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}
