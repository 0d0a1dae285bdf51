package urlencoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Leaf is a terminal position of a nested value.
type Leaf struct {
	Path  string // Path steps joined with the path separator.
	Value any    // Scalar at the path. Never nil when produced by Flatten.
}

// frame is a pending position of the depth-first walk.
type frame struct {
	path  string
	root  bool
	value any
}

// Flatten walks value depth-first and returns its leaves in traversal order.
// Object keys are visited in sorted order and array elements by index. Nil
// scalars and empty containers produce no leaf. A scalar root produces a
// single leaf with an empty path.
func (c Codec) Flatten(value any) []Leaf {
	separator := c.pathSeparator()
	var leaves []Leaf

	stack := []frame{{root: true, value: value}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		childPath := func(step string) string {
			if current.root {
				return step
			}
			return current.path + separator + step
		}

		switch v := normalize(current.value).(type) {
		case nil:
			continue
		case map[string]any:
			keys := sortedKeys(v)
			// Pushed in reverse so the first key is popped first.
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					path:  childPath(keys[i]),
					value: v[keys[i]],
				})
			}
		case []any:
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					path:  childPath(strconv.Itoa(i)),
					value: v[i],
				})
			}
		default:
			leaves = append(leaves, Leaf{Path: current.path, Value: v})
		}
	}

	return leaves
}

// normalize converts value to the encoding/json generic model where that
// changes its shape: typed maps become map[string]any, typed slices become
// []any, pointers are dereferenced and structs go through their JSON form.
// Scalars are returned unchanged.
func normalize(value any) any {
	switch v := value.(type) {
	case nil, bool, string, json.Number, map[string]any, []any:
		return v
	case []byte:
		return string(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[mapKey(iter.Key())] = iter.Value().Interface()
		}
		return m
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		return s
	case reflect.Struct:
		return structToMap(value)
	default:
		return value
	}
}

func mapKey(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprint(key.Interface())
}

// structToMap returns the JSON form of a struct: an object for plain structs,
// or a scalar for types such as time.Time that marshal to one.
func structToMap(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return value
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func splitPath(path string, separator string) []string {
	return strings.Split(path, separator)
}
