package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listInput struct {
	Limit   int               `json:"limit"`
	Filter  map[string]any    `json:"filter"`
	Token   string            `json:"token" source:"header"`
	Session string            `json:"session" source:"cookie"`
	Name    *string           `json:"name"`
	Ignored string            `json:"-"`
	Extra   map[string]string `json:"extra,omitempty"`
	hidden  string
}

func TestParseInput_GETDefaultsToURL(t *testing.T) {
	input := &listInput{
		Limit:   10,
		Filter:  map[string]any{"product": "focus"},
		Token:   "abc",
		Session: "s1",
		Ignored: "x",
		hidden:  "y",
	}

	parsed, err := ParseInput(http.MethodGet, input)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"limit":  10,
		"filter": map[string]any{"product": "focus"},
	}, parsed.URLParameters)
	assert.Equal(t, map[string]string{"token": "abc"}, parsed.Headers)
	require.Len(t, parsed.Cookies, 1)
	assert.Equal(t, "session", parsed.Cookies[0].Name)
	assert.Equal(t, "s1", parsed.Cookies[0].Value)
	assert.Empty(t, parsed.Body)
}

func TestParseInput_POSTDefaultsToBody(t *testing.T) {
	name := "weekly"
	input := listInput{Limit: 1, Name: &name}

	parsed, err := ParseInput(http.MethodPost, input)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"limit": 1, "name": &name}, parsed.Body)
	assert.Empty(t, parsed.URLParameters)
}

func TestParseInput_Errors(t *testing.T) {
	_, err := ParseInput(http.MethodGet, nil)
	require.Error(t, err)

	var nilInput *listInput
	_, err = ParseInput(http.MethodGet, nilInput)
	require.Error(t, err)

	_, err = ParseInput(http.MethodGet, 5)
	require.Error(t, err)

	_, err = ParseInput(http.MethodGet, struct {
		Field string `source:"somewhere"`
	}{Field: "x"})
	require.EqualError(t, err, "invalid source tag: somewhere")
}
