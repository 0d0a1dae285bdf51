// Package urlencoder converts nested values (the encoding/json generic model
// of maps, slices and scalars) to flat URL query strings and back.
//
// Every terminal position of a value becomes one query token whose key is the
// dot-joined path to it. Boolean true is written as a bare key, strings that
// would parse as JSON are re-wrapped as JSON string literals, and everything
// else is written as its plain text. Decoding reverses this by parsing each
// value as JSON and falling back to the raw text.
package urlencoder

import (
	"net/url"

	"github.com/mitchellh/mapstructure"
)

const (
	defaultPathSeparator = "."
	defaultPairSeparator = "&"
)

// Codec encodes and decodes nested values. The zero value is ready to use and
// separates path steps with "." and tokens with "&".
type Codec struct {
	PathSeparator string // Separator between path steps of a leaf key.
	PairSeparator string // Separator between query tokens.
}

func (c Codec) pathSeparator() string {
	if c.PathSeparator == "" {
		return defaultPathSeparator
	}
	return c.PathSeparator
}

func (c Codec) pairSeparator() string {
	if c.PairSeparator == "" {
		return defaultPairSeparator
	}
	return c.PairSeparator
}

// Flatten returns the leaves of value using the default separators.
func Flatten(value any) []Leaf {
	return Codec{}.Flatten(value)
}

// Unflatten rebuilds a nested value from leaves using the default separators.
func Unflatten(leaves []Leaf) any {
	return Codec{}.Unflatten(leaves)
}

// Encode returns the query string for value using the default separators.
func Encode(value any) string {
	return Codec{}.Encode(value)
}

// Decode parses rawQuery using the default separators.
func Decode(rawQuery string) any {
	return Codec{}.Decode(rawQuery)
}

// DecodeInto parses rawQuery and maps the result onto target using the
// default separators.
func DecodeInto(rawQuery string, target any) error {
	return Codec{}.DecodeInto(rawQuery, target)
}

// DecodeInto parses rawQuery and maps the resulting object onto target, which
// must be a pointer. Fields are matched by their json tag and scalar types
// are converted weakly, so "10" fills an int field.
func (c Codec) DecodeInto(rawQuery string, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(c.decodeObject(rawQuery))
}

// URLEncoder bridges url.Values and nested values.
type URLEncoder struct {
	Codec Codec
}

// EncodeURL flattens data into url.Values. Each leaf becomes one or more
// values under its path. Boolean true is stored as an empty value.
//
// Parameters:
//   - data: The nested value to encode.
//
// Returns:
//   - url.Values: The flattened values.
//   - error: Always nil. Kept so URLEncoder satisfies encoder interfaces.
func (e URLEncoder) EncodeURL(data map[string]any) (url.Values, error) {
	values := url.Values{}
	for _, leaf := range e.Codec.Flatten(data) {
		for _, element := range expand(leaf.Value) {
			values.Add(leaf.Path, renderValue(element))
		}
	}
	return values, nil
}

// DecodeURL rebuilds a nested object from url.Values. Repeated values of a
// key become an array.
//
// Parameters:
//   - values: The parsed query values.
//
// Returns:
//   - map[string]any: The rebuilt object.
//   - error: Always nil. Kept so URLEncoder satisfies decoder interfaces.
func (e URLEncoder) DecodeURL(values url.Values) (map[string]any, error) {
	leaves := make([]Leaf, 0, len(values))
	for _, key := range sortedKeys(values) {
		leaves = append(leaves, Leaf{
			Path:  key,
			Value: decodeValues(values[key]),
		})
	}
	return e.Codec.rebuild(leaves).object(), nil
}
