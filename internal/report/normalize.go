// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// sentinel is implemented by values that serialize as a fixed marker in
// some states ("none", "unavailable").
type sentinel interface {
	Sentinel() (string, bool)
}

// Entry is one key of an OrderedMap.
type Entry struct {
	Key   string
	Value any
}

// OrderedMap is a mapping whose keys serialize in insertion order.
type OrderedMap []Entry

// Get returns the value stored under key.
func (m OrderedMap) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order.
func (m OrderedMap) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON writes the entries in order without HTML escaping.
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalJSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML builds a mapping node with the entries in order.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		val := &yaml.Node{}
		if err := val.Encode(e.Value); err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var (
	timeType   = reflect.TypeFor[time.Time]()
	headerType = reflect.TypeFor[http.Header]()
)

// Normalize converts v into a tree of OrderedMap, []any and scalars that
// serializes identically to JSON and YAML. Header maps become plain
// mappings, timestamps become RFC 3339 strings, sets become sorted
// sequences, and integer-keyed maps keep numeric key order.
func Normalize(v any) any {
	return normalize(reflect.ValueOf(v))
}

func normalize(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return nil
	}

	if rv.CanInterface() {
		if s, ok := rv.Interface().(sentinel); ok {
			if marker, ok := s.Sentinel(); ok {
				return marker
			}
		}
	}

	switch rv.Type() {
	case timeType:
		return rv.Interface().(time.Time).Format(time.RFC3339)
	case headerType:
		return normalizeHeader(rv.Interface().(http.Header))
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case json.Marshaler:
			if out, ok := viaJSON(x); ok {
				return out
			}
		case encoding.TextMarshaler:
			if b, err := x.MarshalText(); err == nil {
				return string(b)
			}
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return normalize(rv.Elem())
	case reflect.Struct:
		return normalizeStruct(rv)
	case reflect.Map:
		return normalizeMap(rv)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes())
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i))
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return fmt.Sprint(rv.Interface())
	}
}

func normalizeHeader(h http.Header) OrderedMap {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(OrderedMap, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Value: strings.Join(h[k], ", ")})
	}
	return out
}

func normalizeStruct(rv reflect.Value) OrderedMap {
	t := rv.Type()
	out := make(OrderedMap, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fv := rv.Field(i)
		if strings.Contains(opts, "omitempty") && isEmpty(fv) {
			continue
		}
		out = append(out, Entry{Key: name, Value: normalize(fv)})
	}
	return out
}

func normalizeMap(rv reflect.Value) any {
	if rv.Type().Elem() == reflect.TypeFor[struct{}]() {
		keys := sortedKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = normalize(k)
		}
		return out
	}

	keys := sortedKeys(rv)
	out := make(OrderedMap, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: keyString(k), Value: normalize(rv.MapIndex(k))})
	}
	return out
}

// sortedKeys orders map keys numerically for integer keys and lexically
// otherwise.
func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	switch rv.Type().Key().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		sort.Slice(keys, func(i, j int) bool { return keyString(keys[i]) < keyString(keys[j]) })
	}
	return keys
}

func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10)
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if b, err := tm.MarshalText(); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(k.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// viaJSON marshals a value with custom JSON and decodes it back into an
// ordered tree.
func viaJSON(m json.Marshaler) (any, bool) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return nil, false
	}
	return v, true
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := OrderedMap{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, Entry{Key: key, Value: val})
			}
			_, err := dec.Token()
			return out, err
		case '[':
			out := []any{}
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, val)
			}
			_, err := dec.Token()
			return out, err
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}
