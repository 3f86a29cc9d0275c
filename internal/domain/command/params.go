package command

import "sort"

// Params is an ordered field-name to value mapping. Keys are unique; setting
// an existing key replaces its value in place.
type Params struct {
	keys   []string
	values map[string]string
}

// ParamsFromMap copies m into a new Params. Keys are ordered lexically so the
// result does not depend on map iteration order.
func ParamsFromMap(m map[string]string) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := Params{keys: keys, values: make(map[string]string, len(m))}
	for _, k := range keys {
		p.values[k] = m[k]
	}
	return p
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value stored under key, or "" when absent.
func (p Params) Value(key string) string {
	return p.values[key]
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of fields.
func (p Params) Len() int {
	return len(p.keys)
}

// Map returns the fields as a fresh map.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy sharing no storage with p.
func (p Params) Clone() Params {
	c := Params{
		keys:   make([]string, len(p.keys)),
		values: make(map[string]string, len(p.values)),
	}
	copy(c.keys, p.keys)
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}
