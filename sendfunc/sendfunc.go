// Package sendfunc calls JSON endpoints that answer with an api.APIOutput
// envelope and unwraps their payloads and errors.
package sendfunc

import (
	"context"
	"errors"
	"net/http"

	"github.com/pakkasys/fluidquery/api"
	"github.com/pakkasys/fluidquery/client"
)

// SendFunc sends an input to an endpoint on host.
type SendFunc[I any, O any] func(
	ctx context.Context, host string, input *I,
) (*client.Response[api.APIOutput[O]], error)

// New returns a send function for the endpoint at path. The input is split
// into query, headers, cookies and body by client.ParseInput. It returns the
// API error of the envelope if the endpoint reports one.
func New[I any, O any](
	httpClient *http.Client, path client.Path, method string,
) SendFunc[I, O] {
	return func(
		ctx context.Context, host string, input *I,
	) (*client.Response[api.APIOutput[O]], error) {
		apiResponse, err := client.SendInput[api.APIOutput[O]](
			ctx, httpClient, host, path, method, input,
		)
		if err != nil {
			return nil, err
		}

		if apiErr := apiResponse.Output.Error; apiErr != nil {
			return apiResponse, apiErr
		}

		return apiResponse, nil
	}
}

// SendAndExtractPayload sends a request and extracts the payload from the
// api.APIOutput envelope. A response without a payload is an error.
func SendAndExtractPayload[I any, O any](
	ctx context.Context,
	sendFunc SendFunc[I, O],
	host string,
	input *I,
) (*O, error) {
	apiResponse, err := sendFunc(ctx, host, input)
	if err != nil {
		return nil, err
	}
	if apiResponse.Output.Payload == nil {
		return nil, errors.New("empty payload")
	}

	return apiResponse.Output.Payload, nil
}

// GetOne retrieves the first entity of a list payload. If the list is empty,
// it returns notFoundError.
func GetOne[I any, O any, T any](
	ctx context.Context,
	sendFunc SendFunc[I, O],
	host string,
	input *I,
	notFoundError error,
	extractSliceFn func(*O) []T,
) (*T, error) {
	outputPayload, err := SendAndExtractPayload(ctx, sendFunc, host, input)
	if err != nil {
		return nil, err
	}

	entities := extractSliceFn(outputPayload)
	if len(entities) == 0 {
		if notFoundError != nil {
			return nil, notFoundError
		}
		return nil, errors.New("no entities found")
	}

	return &entities[0], nil
}
