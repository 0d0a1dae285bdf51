package sendfunc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pakkasys/fluidquery/api"
	"github.com/pakkasys/fluidquery/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listInput struct {
	Limit int    `json:"limit"`
	Token string `json:"X-Token" source:"header"`
}

type listOutput struct {
	Items []string `json:"items"`
}

func newAPIServer(t *testing.T, items []string, apiErr *api.APIError) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/items", r.URL.Path)
		assert.Equal(t, "limit=2", r.URL.RawQuery)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))

		output := api.APIOutput[listOutput]{Error: apiErr}
		status := http.StatusBadRequest
		if apiErr == nil {
			output.Payload = &listOutput{Items: items}
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(output))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newListFunc() SendFunc[listInput, listOutput] {
	return New[listInput, listOutput](nil, client.Path{"/v1/items"}, http.MethodGet)
}

func TestSendAndExtractPayload(t *testing.T) {
	srv := newAPIServer(t, []string{"a", "b"}, nil)

	out, err := SendAndExtractPayload(
		context.Background(),
		newListFunc(),
		srv.URL,
		&listInput{Limit: 2, Token: "secret"},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Items)
}

func TestSend_APIError(t *testing.T) {
	srv := newAPIServer(t, nil, api.NewAPIError("INVALID_INPUT").WithData("bad"))

	resp, err := newListFunc()(
		context.Background(), srv.URL, &listInput{Limit: 2, Token: "secret"},
	)

	require.Error(t, err)
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_INPUT", apiErr.ID)
	assert.Equal(t, "bad", apiErr.Data)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.Response.StatusCode)
}

func TestGetOne(t *testing.T) {
	extract := func(o *listOutput) []string { return o.Items }
	notFound := errors.New("not found")

	t.Run("First entity", func(t *testing.T) {
		srv := newAPIServer(t, []string{"first", "second"}, nil)

		item, err := GetOne(
			context.Background(),
			newListFunc(),
			srv.URL,
			&listInput{Limit: 2, Token: "secret"},
			notFound,
			extract,
		)

		require.NoError(t, err)
		assert.Equal(t, "first", *item)
	})

	t.Run("Empty list", func(t *testing.T) {
		srv := newAPIServer(t, []string{}, nil)

		_, err := GetOne(
			context.Background(),
			newListFunc(),
			srv.URL,
			&listInput{Limit: 2, Token: "secret"},
			notFound,
			extract,
		)

		assert.ErrorIs(t, err, notFound)
	})

	t.Run("Default not found error", func(t *testing.T) {
		srv := newAPIServer(t, nil, nil)

		_, err := GetOne(
			context.Background(),
			newListFunc(),
			srv.URL,
			&listInput{Limit: 2, Token: "secret"},
			nil,
			extract,
		)

		assert.EqualError(t, err, "no entities found")
	})
}
