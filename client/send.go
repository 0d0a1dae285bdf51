package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	contentTypeHeader = "Content-Type"
	acceptHeader      = "Accept"
	applicationJSON   = "application/json"
)

// Response represents the response from a client request, including the HTTP
// response and the decoded output.
type Response[Output any] struct {
	Response *http.Response // The HTTP response object. Its body is closed.
	Output   *Output        // The output data of the API response.
}

// SendOptions are the optional parts of a request.
type SendOptions struct {
	HTTPClient *http.Client
	Headers    map[string]string
	Cookies    []http.Cookie
	Body       map[string]any
}

// Send sends a request and decodes the JSON response into Output.
//
//   - ctx: The request context.
//   - host: The host part of the URL, e.g. "http://localhost:8080".
//   - parts: The URL path, query and fragment.
//   - method: The HTTP method (e.g., GET, POST).
//   - sendOptions: Headers, cookies and body. A body on a GET request is an
//     error.
func Send[Output any](
	ctx context.Context,
	host string,
	parts URLParts,
	method string,
	sendOptions *SendOptions,
) (*Response[Output], error) {
	opts := SendOptions{}
	if sendOptions != nil {
		opts = *sendOptions
	}

	if opts.Body != nil && method == http.MethodGet {
		return nil, fmt.Errorf("body cannot be set for GET requests")
	}

	bodyReader, err := marshalBody(opts.Body)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		acceptHeader: applicationJSON,
	}
	if opts.Body != nil {
		headers[contentTypeHeader] = applicationJSON
	}
	for key, value := range opts.Headers {
		headers[key] = value
	}

	req, err := createRequest(
		ctx,
		method,
		ConstructURL(host, parts),
		bodyReader,
		headers,
		opts.Cookies,
	)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	output, err := responseToPayload(resp, new(Output))
	if err != nil {
		return nil, err
	}

	return &Response[Output]{
		Response: resp,
		Output:   output,
	}, nil
}

// SendInput parses input with ParseInput and sends it. URL parameters become
// the encoded query of the request.
func SendInput[Output any](
	ctx context.Context,
	httpClient *http.Client,
	host string,
	path Path,
	method string,
	input any,
) (*Response[Output], error) {
	parsed, err := ParseInput(method, input)
	if err != nil {
		return nil, err
	}

	opts := &SendOptions{
		HTTPClient: httpClient,
		Headers:    parsed.Headers,
		Cookies:    parsed.Cookies,
	}
	if len(parsed.Body) > 0 {
		opts.Body = parsed.Body
	}

	return Send[Output](
		ctx,
		host,
		URLParts{Path: path, Query: parsed.URLParameters},
		method,
		opts,
	)
}

func createRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
	headers map[string]string,
	cookies []http.Cookie,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for i := range cookies {
		req.AddCookie(&cookies[i])
	}

	return req, nil
}

// marshalBody marshals the body into a JSON reader. A nil body yields a nil
// reader so no body is sent.
func marshalBody(body map[string]any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(bodyBytes), nil
}

// responseToPayload unmarshals the response body into the output object.
func responseToPayload[T any](r *http.Response, output *T) (*T, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, output); err != nil {
		return nil, fmt.Errorf(
			"JSON unmarshal error: %v, body: %s", err, string(body),
		)
	}

	return output, nil
}
