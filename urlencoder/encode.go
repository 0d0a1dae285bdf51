package urlencoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Encode flattens value and joins the tokens of every leaf. A value without
// leaves encodes to the empty string.
func (c Codec) Encode(value any) string {
	var tokens []string
	for _, leaf := range c.Flatten(value) {
		tokens = append(tokens, EncodeScalar(leaf.Path, leaf.Value)...)
	}
	return strings.Join(tokens, c.pairSeparator())
}

// EncodeScalar renders value under key as query tokens. A slice value yields
// one token per non-nil element, in order. Each element is rendered by the
// first matching rule:
//
//   - true becomes the bare key.
//   - A string that parses as JSON becomes key=value where value is the
//     string quoted as a JSON string literal.
//   - Anything else becomes key=value with the element's plain text.
//
// Keys and values are query-escaped, with space written as "+".
func EncodeScalar(key string, value any) []string {
	elements := expand(value)
	tokens := make([]string, 0, len(elements))
	for _, element := range elements {
		if b, ok := element.(bool); ok && b {
			tokens = append(tokens, escape(key))
			continue
		}
		tokens = append(tokens, escape(key)+"="+escape(renderValue(element)))
	}
	return tokens
}

// expand returns the non-nil elements of a slice value, or value itself as a
// single element.
func expand(value any) []any {
	normalized := normalize(value)
	if normalized == nil {
		return nil
	}
	elements, ok := normalized.([]any)
	if !ok {
		return []any{normalized}
	}
	out := make([]any, 0, len(elements))
	for _, element := range elements {
		if element = normalize(element); element != nil {
			out = append(out, element)
		}
	}
	return out
}

// renderValue returns the unescaped token value for a single element. True
// renders as the empty string, which decodes back to true.
func renderValue(element any) string {
	switch v := element.(type) {
	case bool:
		if v {
			return ""
		}
		return "false"
	case string:
		if json.Valid([]byte(v)) {
			return quoteJSON(v)
		}
		return v
	default:
		return text(v)
	}
}

// text returns the plain form of a non-string element: numbers as JSON
// numbers, containers nested inside a slice value as compact JSON.
func text(value any) string {
	switch v := value.(type) {
	case json.Number:
		return numberText(v)
	case float64:
		return floatText(v)
	case float32:
		return floatText(float64(v))
	}
	data, err := marshalJSON(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return data
}

// numberText writes n the way JavaScript prints the same double, so 1.50
// becomes 1.5 and 1e2 becomes 100. A literal outside the float64 range is
// kept as written.
func numberText(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return string(n)
	}
	return floatText(f)
}

func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	data, err := marshalJSON(f)
	if err != nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return data
}

func quoteJSON(s string) string {
	data, err := marshalJSON(s)
	if err != nil {
		return s
	}
	return data
}

// marshalJSON marshals without HTML escaping so the output matches what a
// browser's JSON.stringify produces.
func marshalJSON(value any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unreserved restores the characters that encodeURIComponent leaves alone
// but url.QueryEscape escapes.
var unreserved = strings.NewReplacer(
	"%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*",
)

// escape percent-encodes s as a query component with space written as "+".
func escape(s string) string {
	return unreserved.Replace(url.QueryEscape(s))
}
