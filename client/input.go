package client

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

const (
	sourceTag = "source"
	jsonTag   = "json"

	tagURL     = "url"
	tagBody    = "body"
	tagHeader  = "header"
	tagHeaders = "headers"
	tagCookie  = "cookie"
	tagCookies = "cookies"
)

// ParsedInput represents the parsed input data.
type ParsedInput struct {
	URLParameters map[string]any    // Nested value sent as the URL query.
	Headers       map[string]string // HTTP headers to include in the request.
	Cookies       []http.Cookie     // Cookies to include in the request.
	Body          map[string]any    // Request body data.
}

// ParseInput splits the fields of an input struct (or pointer to one) into
// URL parameters, headers, cookies and body based on their `source` tag,
// e.g. `source:"url"`. Fields without a tag go to the URL for GET requests
// and to the body otherwise. Field names come from the `json` tag. Nil
// pointer, map and slice fields are skipped; URL parameters may hold nested
// values, which are flattened when the query is encoded.
//
//   - method: The HTTP method for the request.
//   - input: The input struct to parse.
func ParseInput(method string, input any) (*ParsedInput, error) {
	if input == nil {
		return nil, fmt.Errorf("parsed input is nil")
	}

	inputVal := reflect.ValueOf(input)
	for inputVal.Kind() == reflect.Pointer {
		if inputVal.IsNil() {
			return nil, fmt.Errorf("parsed input is nil")
		}
		inputVal = inputVal.Elem()
	}
	if inputVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input must be a struct, got %s", inputVal.Kind())
	}

	parsed := &ParsedInput{
		URLParameters: make(map[string]any),
		Headers:       make(map[string]string),
		Cookies:       make([]http.Cookie, 0),
		Body:          make(map[string]any),
	}
	defaultPlacement := determineDefaultPlacement(method)

	inputType := inputVal.Type()
	for i := 0; i < inputVal.NumField(); i++ {
		fieldInfo := inputType.Field(i)
		if !fieldInfo.IsExported() {
			continue
		}
		name, skip := determineFieldName(fieldInfo.Tag.Get(jsonTag), fieldInfo.Name)
		if skip {
			continue
		}
		field := inputVal.Field(i)
		if isNilField(field) {
			continue
		}

		placement := fieldInfo.Tag.Get(sourceTag)
		if placement == "" {
			placement = defaultPlacement
		}
		if err := parsed.place(placement, name, field.Interface()); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// determineDefaultPlacement returns where untagged fields go for a method.
func determineDefaultPlacement(method string) string {
	if method == http.MethodGet || method == http.MethodHead {
		return tagURL
	}
	return tagBody
}

// determineFieldName returns the name of a field from its json tag, falling
// back to the Go field name. A tag of "-" skips the field.
func determineFieldName(tag string, fieldName string) (string, bool) {
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return "", true
	}
	if name == "" {
		name = fieldName
	}
	return name, false
}

func isNilField(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return field.IsNil()
	default:
		return false
	}
}

// place stores value under name in the part selected by placement.
func (p *ParsedInput) place(placement string, name string, value any) error {
	switch placement {
	case tagURL:
		p.URLParameters[name] = value
	case tagBody:
		p.Body[name] = value
	case tagHeader, tagHeaders:
		p.Headers[name] = fmt.Sprint(dereference(value))
	case tagCookie, tagCookies:
		p.Cookies = append(p.Cookies, http.Cookie{
			Name:  name,
			Value: fmt.Sprint(dereference(value)),
		})
	default:
		return fmt.Errorf("invalid source tag: %s", placement)
	}
	return nil
}

func dereference(value any) any {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	return v.Interface()
}
