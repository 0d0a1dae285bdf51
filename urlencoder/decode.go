package urlencoder

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Decode parses rawQuery into a nested value. A leading "?" or "#" is
// ignored. Keys repeated in the query become arrays, and each value is
// decoded with DecodeToken. The result is a map[string]any, or a []any when
// the top-level keys are exactly the indices 0..n-1. Decode never fails: a
// token that cannot be unescaped or parsed keeps its raw text.
func (c Codec) Decode(rawQuery string) any {
	return c.rebuild(c.parseLeaves(rawQuery)).materialize()
}

// DecodeToken decodes a single unescaped token value. An empty value (a bare
// key or "key=") decodes to true. A value that parses as JSON decodes to the
// parsed value. Anything else is returned as the string itself.
func DecodeToken(raw string) any {
	if raw == "" {
		return true
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

func (c Codec) decodeObject(rawQuery string) map[string]any {
	return c.rebuild(c.parseLeaves(rawQuery)).object()
}

// parseLeaves splits rawQuery into one leaf per distinct key, in order of
// first appearance.
func (c Codec) parseLeaves(rawQuery string) []Leaf {
	if strings.HasPrefix(rawQuery, "?") || strings.HasPrefix(rawQuery, "#") {
		rawQuery = rawQuery[1:]
	}

	var keys []string
	grouped := map[string][]string{}
	for _, token := range strings.Split(rawQuery, c.pairSeparator()) {
		if token == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(token, "=")
		key := unescape(rawKey)
		if _, seen := grouped[key]; !seen {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], unescape(rawValue))
	}

	leaves := make([]Leaf, 0, len(keys))
	for _, key := range keys {
		leaves = append(leaves, Leaf{Path: key, Value: decodeValues(grouped[key])})
	}
	return leaves
}

// decodeValues decodes the values of one key: a single value stays a scalar,
// repeated values become an array in query order.
func decodeValues(values []string) any {
	switch len(values) {
	case 0:
		return true
	case 1:
		return DecodeToken(values[0])
	}
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = DecodeToken(value)
	}
	return out
}

// unescape reverses escape. Text with a malformed escape is kept verbatim.
func unescape(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}

// Unflatten rebuilds a nested value from leaves. Path steps create objects on
// demand, and objects whose keys are exactly 0..n-1 become arrays. When a
// path is both a scalar and a container, the container wins. A later leaf
// with the same path replaces an earlier one.
func (c Codec) Unflatten(leaves []Leaf) any {
	return c.rebuild(leaves).materialize()
}

// node is an intermediate position while rebuilding a value.
type node struct {
	value    any
	isLeaf   bool
	keys     []string
	children map[string]*node
}

func newNode() *node {
	return &node{children: map[string]*node{}}
}

func (n *node) child(step string) *node {
	if existing, ok := n.children[step]; ok {
		return existing
	}
	created := newNode()
	n.keys = append(n.keys, step)
	n.children[step] = created
	return created
}

func (c Codec) rebuild(leaves []Leaf) *node {
	separator := c.pathSeparator()
	root := newNode()
	for _, leaf := range leaves {
		steps := splitPath(leaf.Path, separator)
		current := root
		for _, step := range steps[:len(steps)-1] {
			current = current.child(step)
			if current.isLeaf {
				current.isLeaf = false
				current.value = nil
			}
		}
		target := current.child(steps[len(steps)-1])
		if len(target.keys) > 0 {
			continue
		}
		target.isLeaf = true
		target.value = leaf.Value
	}
	return root
}

// materialize converts n to its final value.
func (n *node) materialize() any {
	if n.isLeaf {
		return n.value
	}
	if len(n.keys) > 0 && n.isIndexed() {
		out := make([]any, len(n.keys))
		for _, key := range n.keys {
			index, _ := strconv.Atoi(key)
			out[index] = n.children[key].materialize()
		}
		return out
	}
	return n.object()
}

// object converts n to a map regardless of its keys.
func (n *node) object() map[string]any {
	out := make(map[string]any, len(n.keys))
	for _, key := range n.keys {
		out[key] = n.children[key].materialize()
	}
	return out
}

// isIndexed reports whether the keys of n are exactly 0..len(keys)-1.
func (n *node) isIndexed() bool {
	seen := make([]bool, len(n.keys))
	for _, key := range n.keys {
		index, ok := arrayIndex(key)
		if !ok || index >= len(seen) || seen[index] {
			return false
		}
		seen[index] = true
	}
	return true
}

// arrayIndex parses a canonical non-negative integer step such as "0" or
// "12". Steps with signs or leading zeros are object keys.
func arrayIndex(step string) (int, bool) {
	if step == "" || (len(step) > 1 && step[0] == '0') {
		return 0, false
	}
	for _, r := range step {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(step)
	if err != nil {
		return 0, false
	}
	return index, true
}
