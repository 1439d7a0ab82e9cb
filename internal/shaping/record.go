package shaping

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Record is an ordered field name -> value mapping. It marshals to a JSON
// object with keys in insertion order.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord(capacity int) *Record {
	return &Record{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// Set adds key or replaces its value in place.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Lookup finds a value by key ignoring case.
func (r *Record) Lookup(key string) (any, bool) {
	if v, ok := r.values[key]; ok {
		return v, true
	}
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return r.values[k], true
		}
	}
	return nil, false
}

func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int { return len(r.keys) }

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
