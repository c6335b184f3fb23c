package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is an insertion-ordered mapping from field name to value. Values
// are strings, numbers, bools or string slices (multi-valued fields such as
// images). Records from heterogeneous strategies may carry different key
// sets; the order and the key set of each record are preserved as produced.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value under name, overwriting a previous value but keeping
// the field's original position.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// SetFirst stores a value only if the field is not already present. It
// returns true when the value was stored. This is the "first match wins"
// collision policy: later matches for an already-resolved field role are
// discarded.
func (r *Record) SetFirst(name string, v any) bool {
	if _, ok := r.values[name]; ok {
		return false
	}
	r.keys = append(r.keys, name)
	r.values[name] = v
	return true
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the field is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON emits the record as a JSON object with fields in insertion
// order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits the record as a YAML mapping with fields in insertion
// order.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
