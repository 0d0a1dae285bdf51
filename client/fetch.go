package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Logger is the logger used by Fetcher.
type Logger interface {
	Error(messages ...any)
}

// OperationObserver records the outcome of an operation.
type OperationObserver interface {
	ObserveOperation(operation string, outcome string)
}

// Fetch outcomes reported to the observer.
const (
	FetchOK          = "ok"
	FetchBadStatus   = "bad_status"
	FetchTransport   = "transport_error"
	FetchParseFailed = "parse_error"
)

// Fetcher retrieves JSON documents. It never returns errors: failures are
// logged and reported as a nil result, which callers must treat as "no data".
type Fetcher struct {
	HTTPClient *http.Client
	Logger     Logger
	Observer   OperationObserver
}

// NewFetcher returns a Fetcher. A nil httpClient uses http.DefaultClient.
func NewFetcher(httpClient *http.Client, logger Logger) *Fetcher {
	return &Fetcher{HTTPClient: httpClient, Logger: logger}
}

// FetchJSON GETs url and returns the body parsed as JSON. A non-200 status
// is logged but the body is still parsed. A transport failure or a body that
// is not JSON is logged and yields nil.
func (f *Fetcher) FetchJSON(ctx context.Context, url string) any {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logError("Invalid fetch URL", map[string]any{"url": url, "error": err.Error()})
		f.observe(FetchTransport)
		return nil
	}
	req.Header.Set("Accept", applicationJSON)

	resp, err := f.httpClient().Do(req)
	if err != nil {
		f.logError("Fetch failed", map[string]any{"url": url, "error": err.Error()})
		f.observe(FetchTransport)
		return nil
	}
	defer resp.Body.Close()

	outcome := FetchOK
	if resp.StatusCode != http.StatusOK {
		f.logError("Unexpected status", map[string]any{"url": url, "status": resp.StatusCode})
		outcome = FetchBadStatus
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logError("Reading body failed", map[string]any{"url": url, "error": err.Error()})
		f.observe(FetchTransport)
		return nil
	}

	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		f.logError("Problem parsing", map[string]any{"url": url, "body": string(body)})
		f.observe(FetchParseFailed)
		return nil
	}

	f.observe(outcome)
	return out
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTPClient == nil {
		return http.DefaultClient
	}
	return f.HTTPClient
}

func (f *Fetcher) logError(messages ...any) {
	if f.Logger != nil {
		f.Logger.Error(messages...)
	}
}

func (f *Fetcher) observe(outcome string) {
	if f.Observer != nil {
		f.Observer.ObserveOperation("fetch", outcome)
	}
}
