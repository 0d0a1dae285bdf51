package reqhandler

import (
	"bytes"
	"io"
	"net/http"
)

// ReqWrap wraps an http.Request, capturing its body for multiple reads and
// inspection.
type ReqWrap struct {
	*http.Request        // Embedded request.
	BodyContent   []byte // Captured request body.
}

// NewReqWrap creates a new ReqWrap instance and captures the request body.
// If the body is larger than maxRequestBodySize bytes, an
// *http.MaxBytesError is returned. A maxRequestBodySize of zero or less
// disables the limit.
//
// Parameters:
//   - r: The original http.Request.
//   - maxRequestBodySize: The maximum size of the body in bytes.
//
// Returns:
//   - *ReqWrap: The wrapped request.
//   - error: Any error encountered during body reading.
func NewReqWrap(r *http.Request, maxRequestBodySize int64) (*ReqWrap, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return &ReqWrap{Request: r}, nil
	}

	body := r.Body
	if maxRequestBodySize > 0 {
		body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	}
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	// Replace the body so it can be read again.
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return &ReqWrap{
		Request:     r,
		BodyContent: bodyBytes,
	}, nil
}
