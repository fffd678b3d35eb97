package signer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fields is a string-keyed mapping that keeps insertion order when
// serialized to JSON. The signed envelope covers the exact byte sequence of
// the serialized body, so key order must be reproducible; Go maps are not.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields returns an empty ordered field set.
func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores value under key. A repeated key keeps its original position and
// takes the new value.
func (f *Fields) Set(key string, value any) *Fields {
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (any, bool) {
	if f == nil || f.values == nil {
		return nil, false
	}
	v, ok := f.values[key]
	return v, ok
}

// Len reports the number of stored keys.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Merge applies every entry of other on top of f. Keys present in both keep
// f's position and take other's value; new keys append in other's order.
func (f *Fields) Merge(other *Fields) *Fields {
	if other == nil {
		return f
	}
	for _, k := range other.keys {
		f.Set(k, other.values[k])
	}
	return f
}

// MergeMap applies entries from a plain map. Map iteration order is not
// stable, so this is only used for caller overrides whose relative order the
// wire format does not pin down beyond override-wins.
func (f *Fields) MergeMap(m map[string]any) *Fields {
	for k, v := range m {
		f.Set(k, v)
	}
	return f
}

// MarshalJSON serializes the fields as a JSON object in insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	if f == nil || len(f.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal field key %q: %w", k, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
