package inputlogic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/pakkasys/fluidquery/validation"
)

const (
	sourceTag = "source"
	jsonTag   = "json"
)

// Input sources of the `source` struct tag.
const (
	SourceURL    = "url"
	SourceBody   = "body"
	SourceHeader = "header"
	SourceCookie = "cookie"
	SourcePath   = "path"
)

var knownSources = map[string]bool{
	SourceURL:    true,
	SourceBody:   true,
	SourceHeader: true,
	SourceCookie: true,
	SourcePath:   true,
}

// URLDecoder decodes URL query values into a nested map.
type URLDecoder interface {
	DecodeURL(values url.Values) (map[string]any, error)
}

// fieldSources lists the sources of a single input field in priority order.
type fieldSources struct {
	name    string
	sources []string
}

type registryKey struct {
	typ           reflect.Type
	defaultSource string
}

// ObjectPicker fills input structs from a request. Each field named by a
// `json` tag is read from the sources listed in its `source` tag, e.g.
// `source:"url,body"`, using the first source that has a value. Fields
// without a source tag use the URL for GET, HEAD and DELETE requests and
// the body otherwise. Fields without a `json` tag are never filled.
type ObjectPicker[T any] struct {
	urlDecoder URLDecoder

	mu       sync.RWMutex
	registry map[registryKey][]fieldSources
}

// NewObjectPicker returns a new ObjectPicker.
//
// Parameters:
//   - urlDecoder: Decodes the URL query into a nested map.
//
// Returns:
//   - *ObjectPicker[T]: The new ObjectPicker.
func NewObjectPicker[T any](urlDecoder URLDecoder) *ObjectPicker[T] {
	return &ObjectPicker[T]{
		urlDecoder: urlDecoder,
		registry:   map[registryKey][]fieldSources{},
	}
}

// PickObject fills obj from the request. It panics if a field names an
// unknown source.
//
// Parameters:
//   - r: The request.
//   - w: The response writer.
//   - obj: The object to fill.
//
// Returns:
//   - *T: The filled object.
//   - error: An InvalidInputError if the request cannot be decoded.
func (o *ObjectPicker[T]) PickObject(
	r *http.Request, _ http.ResponseWriter, obj T,
) (*T, error) {
	defaultSource := defaultSource(r.Method)
	fields := o.mustUpdateObjectRegistry([]any{obj}, defaultSource)

	values, err := newRequestSources(r, o.urlDecoder).pick(fields)
	if err != nil {
		return nil, err
	}

	if err := decodeMap(values, &obj); err != nil {
		return nil, validation.InvalidInputError.WithData(err.Error())
	}
	return &obj, nil
}

// mustUpdateObjectRegistry registers the field sources of the sample
// objects and returns those of the last one.
func (o *ObjectPicker[T]) mustUpdateObjectRegistry(
	objectSamples []any, defaultSource string,
) []fieldSources {
	var fields []fieldSources
	for _, sample := range objectSamples {
		key := registryKey{
			typ:           reflect.TypeOf(sample),
			defaultSource: defaultSource,
		}

		o.mu.RLock()
		cached, ok := o.registry[key]
		o.mu.RUnlock()
		if ok {
			fields = cached
			continue
		}

		fields = mustFieldSources(key.typ, defaultSource)
		o.mu.Lock()
		o.registry[key] = fields
		o.mu.Unlock()
	}
	return fields
}

func mustFieldSources(typ reflect.Type, defaultSource string) []fieldSources {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil
	}

	var fields []fieldSources
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get(jsonTag), ",")
		if name == "" || name == "-" {
			continue
		}

		sources := []string{defaultSource}
		if tag := field.Tag.Get(sourceTag); tag != "" {
			sources = strings.Split(tag, ",")
		}
		for j, source := range sources {
			source = strings.TrimSpace(source)
			if !knownSources[source] {
				panic(fmt.Sprintf(
					"unknown input source %q for field %s", source, field.Name,
				))
			}
			sources[j] = source
		}

		fields = append(fields, fieldSources{name: name, sources: sources})
	}
	return fields
}

func defaultSource(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return SourceURL
	default:
		return SourceBody
	}
}

// requestSources reads the URL and body of a request at most once.
type requestSources struct {
	r          *http.Request
	urlDecoder URLDecoder

	urlValues  map[string]any
	bodyValues map[string]any
	urlLoaded  bool
	bodyLoaded bool
}

func newRequestSources(r *http.Request, urlDecoder URLDecoder) *requestSources {
	return &requestSources{r: r, urlDecoder: urlDecoder}
}

func (s *requestSources) pick(fields []fieldSources) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		for _, source := range field.sources {
			value, ok, err := s.lookup(source, field.name)
			if err != nil {
				return nil, err
			}
			if ok {
				values[field.name] = value
				break
			}
		}
	}
	return values, nil
}

func (s *requestSources) lookup(source string, name string) (any, bool, error) {
	switch source {
	case SourceURL:
		if err := s.loadURL(); err != nil {
			return nil, false, err
		}
		value, ok := s.urlValues[name]
		return value, ok, nil
	case SourceBody:
		if err := s.loadBody(); err != nil {
			return nil, false, err
		}
		value, ok := s.bodyValues[name]
		return value, ok, nil
	case SourceHeader:
		value := s.r.Header.Get(name)
		return value, value != "", nil
	case SourceCookie:
		cookie, err := s.r.Cookie(name)
		if err != nil {
			return nil, false, nil
		}
		return cookie.Value, true, nil
	case SourcePath:
		value := chi.URLParam(s.r, name)
		return value, value != "", nil
	default:
		return nil, false, nil
	}
}

func (s *requestSources) loadURL() error {
	if s.urlLoaded {
		return nil
	}
	s.urlLoaded = true
	values, err := s.urlDecoder.DecodeURL(s.r.URL.Query())
	if err != nil {
		return validation.InvalidInputError.WithData(err.Error())
	}
	s.urlValues = values
	return nil
}

func (s *requestSources) loadBody() error {
	if s.bodyLoaded {
		return nil
	}
	s.bodyLoaded = true
	if s.r.Body == nil {
		return nil
	}

	body, err := io.ReadAll(s.r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	s.r.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&s.bodyValues); err != nil {
		return validation.InvalidInputError.WithData(
			"invalid JSON body: " + err.Error(),
		)
	}
	return nil
}

// decodeMap decodes a map into the provided object.
func decodeMap(value map[string]any, obj any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           obj,
		TagName:          jsonTag,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(value)
}
