package inputlogic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pakkasys/fluidquery/urlencoder"
	"github.com/pakkasys/fluidquery/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyURLDecoder converts all query parameters into a map[string]any.
type dummyURLDecoder struct{}

func (d *dummyURLDecoder) DecodeURL(values url.Values) (map[string]any, error) {
	result := make(map[string]any)
	for k, v := range values {
		if len(v) == 1 {
			result[k] = v[0]
		} else {
			result[k] = v
		}
	}
	return result, nil
}

type failingURLDecoder struct{}

func (d failingURLDecoder) DecodeURL(url.Values) (map[string]any, error) {
	return nil, errors.New("bad query")
}

// Fields come from either URL, body, headers, or cookies.
type testPayload struct {
	URLField    string `json:"url_field" source:"url"`
	BodyField   string `json:"body_field" source:"body"`
	HeaderField string `json:"header_field" source:"header"`
	CookieField string `json:"cookie_field" source:"cookie"`

	// No source tag: the default source depends on the HTTP method.
	DefaultField string `json:"default_field"`

	// The first source that has a value wins.
	MultiSource string `json:"multi_source" source:"url,body,header"`
}

type noTagPayload struct {
	Field1 string
	Field2 int
}

type mixedStruct struct {
	FieldA string `json:"field_a"`
	FieldB int    // no tags at all
	FieldC bool   `json:"field_c" source:"header"`
}

type unknownSourcePayload struct {
	Field string `json:"field" source:"invalidSource"`
}

type nestedPayload struct {
	Name   string         `json:"name" source:"path"`
	Limit  int            `json:"limit"`
	Filter map[string]any `json:"filter"`
	Tags   []string       `json:"tags"`
}

func TestPickObjectFromGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/test?url_field=hello+url&default_field=default_via_url"+
			"&multi_source=multi_value_url",
		nil)
	w := httptest.NewRecorder()
	req.Header.Set("header_field", "header_value")
	req.AddCookie(&http.Cookie{Name: "cookie_field", Value: "cookie_value"})

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, testPayload{})
	require.NoError(t, err)

	assert.Equal(t, "hello url", got.URLField)
	assert.Equal(t, "", got.BodyField)
	assert.Equal(t, "header_value", got.HeaderField)
	assert.Equal(t, "cookie_value", got.CookieField)
	assert.Equal(t, "default_via_url", got.DefaultField)
	assert.Equal(t, "multi_value_url", got.MultiSource)
}

func TestPickObjectFromPOST(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"body_field":    "hello body",
		"default_field": "default_via_body",
		"multi_source":  "multi_value_body",
	})
	req := httptest.NewRequest(
		http.MethodPost, "/test?url_field=url_value", bytes.NewReader(body),
	)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "cookie_field", Value: "cookie_value"})
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, testPayload{})
	require.NoError(t, err)

	assert.Equal(t, "url_value", got.URLField)
	assert.Equal(t, "hello body", got.BodyField)
	assert.Equal(t, "default_via_body", got.DefaultField)
	assert.Equal(t, "multi_value_body", got.MultiSource)
	assert.Equal(t, "", got.HeaderField)
	assert.Equal(t, "cookie_value", got.CookieField)
}

func TestPickObject_MultiSourceFallsThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("multi_source", "from_header")
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, testPayload{})
	require.NoError(t, err)

	assert.Equal(t, "from_header", got.MultiSource)
}

func TestPickObject_BodyCanBeReadAgain(t *testing.T) {
	body := `{"body_field":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	_, err := picker.PickObject(req, w, testPayload{})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, buf.String())
}

func TestNoTagPayload(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"Field1": "value1", "Field2": 123})
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(body))
	w := httptest.NewRecorder()

	picker := NewObjectPicker[noTagPayload](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, noTagPayload{})
	require.NoError(t, err)

	assert.Equal(t, "", got.Field1)
	assert.Equal(t, 0, got.Field2)
}

func TestMixedStruct(t *testing.T) {
	body, _ := json.Marshal(map[string]any{"field_a": "body_value_a"})
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(body))
	req.Header.Set("field_c", "true")
	w := httptest.NewRecorder()

	picker := NewObjectPicker[mixedStruct](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, mixedStruct{})
	require.NoError(t, err)

	assert.Equal(t, "body_value_a", got.FieldA)
	assert.Equal(t, 0, got.FieldB)
	assert.True(t, got.FieldC)
}

func TestEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	got, err := picker.PickObject(req, w, testPayload{})
	require.NoError(t, err)
	assert.Equal(t, &testPayload{}, got)
}

func TestInvalidBody(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodPost, "/test", strings.NewReader(`{"body_field":`),
	)
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	_, err := picker.PickObject(req, w, testPayload{})

	assert.ErrorIs(t, err, validation.InvalidInputError)
}

func TestNonObjectBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`[1,2]`))
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})
	_, err := picker.PickObject(req, w, testPayload{})

	assert.ErrorIs(t, err, validation.InvalidInputError)
}

func TestDecodeTypeMismatch(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodPost, "/test", strings.NewReader(`{"field_c":"not a bool"}`),
	)
	req.Header.Set("field_c", "not a bool")
	w := httptest.NewRecorder()

	picker := NewObjectPicker[mixedStruct](&dummyURLDecoder{})
	_, err := picker.PickObject(req, w, mixedStruct{})

	assert.ErrorIs(t, err, validation.InvalidInputError)
}

func TestURLDecoderError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test?url_field=x", nil)
	w := httptest.NewRecorder()

	picker := NewObjectPicker[testPayload](failingURLDecoder{})
	_, err := picker.PickObject(req, w, testPayload{})

	assert.ErrorIs(t, err, validation.InvalidInputError)
}

func TestPanicOnUnknownSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	picker := NewObjectPicker[unknownSourcePayload](&dummyURLDecoder{})

	assert.Panics(t, func() {
		_, _ = picker.PickObject(req, w, unknownSourcePayload{})
	})
}

func TestObjectRegistry(t *testing.T) {
	picker := NewObjectPicker[testPayload](&dummyURLDecoder{})

	first := picker.mustUpdateObjectRegistry([]any{testPayload{}}, SourceURL)
	second := picker.mustUpdateObjectRegistry([]any{testPayload{}}, SourceURL)
	body := picker.mustUpdateObjectRegistry([]any{testPayload{}}, SourceBody)

	assert.Equal(t, first, second)
	assert.Len(t, picker.registry, 2)
	assert.Equal(t, []string{SourceURL}, first[4].sources)
	assert.Equal(t, []string{SourceBody}, body[4].sources)
	assert.Equal(t, []string{"url", "body", "header"}, first[5].sources)
}

// TestPickObject_NestedQuery uses the query codec to decode nested values
// and typed scalars, and chi to resolve path parameters.
func TestPickObject_NestedQuery(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/views/home?limit=10&filter.owner=alice&filter.public&tags=a&tags=b",
		nil,
	)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("name", "home")
	req = req.WithContext(
		context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx),
	)
	w := httptest.NewRecorder()

	picker := NewObjectPicker[nestedPayload](urlencoder.URLEncoder{})
	got, err := picker.PickObject(req, w, nestedPayload{})
	require.NoError(t, err)

	assert.Equal(t, &nestedPayload{
		Name:   "home",
		Limit:  10,
		Filter: map[string]any{"owner": "alice", "public": true},
		Tags:   []string{"a", "b"},
	}, got)
}
