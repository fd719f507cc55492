package jss

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/elliotchance/orderedmap/v3"

	"jssc/utils/debug"
)

// Object is a node of the output tree: an insertion ordered mapping whose
// values are plain data - string, float64, *Object or []*Object (fallbacks).
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewObject returns empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.NewOrderedMap[string, any]()}
}

// Len returns number of keys.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for el := o.m.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Get returns value stored under key.
func (o *Object) Get(key string) (any, bool) {
	return o.m.Get(key)
}

// Object returns nested object stored under key or nil.
func (o *Object) Object(key string) *Object {
	v, _ := o.m.Get(key)
	obj, _ := v.(*Object)
	return obj
}

// Set stores value under key. Existing key keeps its position.
func (o *Object) Set(key string, v any) {
	o.m.Set(key, v)
}

// Child returns nested object stored under key creating it when absent.
func (o *Object) Child(key string) *Object {
	if obj := o.Object(key); obj != nil {
		return obj
	}
	obj := NewObject()
	o.m.Set(key, obj)
	return obj
}

// Merge shallow merges src on top of o: values of src win on conflicting
// keys.
func (o *Object) Merge(src *Object) {
	for el := src.m.Front(); el != nil; el = el.Next() {
		o.m.Set(el.Key, el.Value)
	}
}

// SortKeys reorders keys of o and all nested objects (including fallback
// entries) according to less. Array order is kept.
func (o *Object) SortKeys(less func(a, b string) bool) {
	keys := o.Keys()
	slices.SortStableFunc(keys, func(a, b string) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})

	sorted := orderedmap.NewOrderedMap[string, any]()
	for _, k := range keys {
		v, _ := o.m.Get(k)
		switch v := v.(type) {
		case *Object:
			v.SortKeys(less)
		case []*Object:
			for _, e := range v {
				e.SortKeys(less)
			}
		}
		sorted.Set(k, v)
	}
	o.m = sorted
}

// Plain returns deep copy of o as map[string]any with []any for arrays.
func (o *Object) Plain() map[string]any {
	out := make(map[string]any, o.m.Len())
	for el := o.m.Front(); el != nil; el = el.Next() {
		out[el.Key] = plain(el.Value)
	}
	return out
}

func plain(v any) any {
	switch v := v.(type) {
	case *Object:
		return v.Plain()
	case []*Object:
		arr := make([]any, 0, len(v))
		for _, e := range v {
			arr = append(arr, e.Plain())
		}
		return arr
	}
	return v
}

// MarshalJSON implements json.Marshaler preserving key order. HTML
// characters are not escaped, so callers should not pass result through
// json.Marshal, which would escape "&" in nested selector keys.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for el := o.m.Front(); el != nil; el = el.Next() {
		if el != o.m.Front() {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, el.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSONValue(buf, el.Value); err != nil {
			return fmt.Errorf("unable to encode value of %q: %w", el.Key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case *Object:
		return v.writeJSON(buf)
	case []*Object:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case string:
		return writeJSONString(buf, v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("unsupported number %v", v)
		}
		// encoding/json formats floats the way ECMAScript does
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode adds newline
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// String returns a readable tree of the object. It exists solely for
// debugging and reports.
func (o *Object) String() string {
	tw := debug.NewTreeWriter()
	o.dump(tw, 0)
	return tw.String()
}

func (o *Object) dump(tw *debug.TreeWriter, depth int) {
	for el := o.m.Front(); el != nil; el = el.Next() {
		switch v := el.Value.(type) {
		case *Object:
			tw.Line(depth, "%s (%d)", el.Key, v.Len())
			v.dump(tw, depth+1)
		case []*Object:
			tw.Line(depth, "%s [%d]", el.Key, len(v))
			for _, e := range v {
				e.dump(tw, depth+1)
			}
		default:
			tw.KeyValue(depth, el.Key, v)
		}
	}
}
