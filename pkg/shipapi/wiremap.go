package shipapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// WireMap is an insertion-ordered string-keyed map holding wire-ready values:
// primitives, []any, and nested *WireMap.
type WireMap struct {
	keys   []string
	values map[string]any
}

// NewWireMap returns an empty WireMap.
func NewWireMap() *WireMap {
	return &WireMap{values: make(map[string]any)}
}

// Len returns the number of top-level keys.
func (m *WireMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the top-level keys in insertion order.
func (m *WireMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Get returns the value stored under key.
func (m *WireMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Lookup follows path through nested maps.
func (m *WireMap) Lookup(path ...string) (any, bool) {
	var current any = m
	for _, segment := range path {
		nested, ok := current.(*WireMap)
		if !ok {
			return nil, false
		}
		if current, ok = nested.Get(segment); !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores v under key. An existing key keeps its position.
func (m *WireMap) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// SetPath stores v at the nested location named by path, creating
// intermediate maps as needed.
func (m *WireMap) SetPath(path []string, v any) error {
	if len(path) == 0 {
		return NewError(KindInvalidParameter, "empty parameter path")
	}

	current := m
	for i, segment := range path[:len(path)-1] {
		existing, ok := current.Get(segment)
		if !ok {
			next := NewWireMap()
			current.Set(segment, next)
			current = next
			continue
		}
		next, ok := existing.(*WireMap)
		if !ok {
			return NewError(KindInvalidParameter,
				fmt.Sprintf("parameter path %s collides with a non-object value", strings.Join(path[:i+1], ".")))
		}
		current = next
	}
	current.Set(path[len(path)-1], v)
	return nil
}

// Delete removes key if present.
func (m *WireMap) Delete(key string) {
	if m == nil {
		return
	}
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

// Compact removes null entries at every depth.
func (m *WireMap) Compact() {
	if m == nil {
		return
	}
	for _, key := range m.Keys() {
		switch v := m.values[key].(type) {
		case nil:
			m.Delete(key)
		case *WireMap:
			v.Compact()
		case []any:
			for _, item := range v {
				if nested, ok := item.(*WireMap); ok {
					nested.Compact()
				}
			}
		}
	}
}

// ToMap converts the map and everything nested in it to plain Go maps.
func (m *WireMap) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, key := range m.keys {
		out[key] = plain(m.values[key])
	}
	return out
}

func plain(v any) any {
	switch val := v.(type) {
	case *WireMap:
		return val.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *WireMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
