// Package reqhandler provides the outermost request middleware: trace IDs,
// request-scoped loggers, request and response capture, panic recovery and
// request logging.
package reqhandler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pakkasys/fluidquery/endpoint"
	"github.com/pakkasys/fluidquery/logging"
)

const (
	// HeaderTraceID carries the trace ID of a request and its response.
	HeaderTraceID = "X-Trace-ID"

	headerXForwardedFor = "X-Forwarded-For"

	maxDumpPartSize = 1024 * 1024 // 1MB
)

type contextKey int

const requestMetadataKey contextKey = iota

type requestLog struct {
	StartTime     time.Time `json:"start_time"`     // Start time of the request.
	RemoteAddress string    `json:"remote_address"` // Remote IP address of the client making the request.
	Protocol      string    `json:"protocol"`       // Protocol used in the request (e.g., HTTP/1.1).
	HTTPMethod    string    `json:"http_method"`    // HTTP method used for the request.
	URL           string    `json:"url"`            // Full URL of the request.
}

type completedLog struct {
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration"`
}

// RequestMetadata describes a request handled by the middleware.
type RequestMetadata struct {
	TimeStart     time.Time // Time when the request started.
	TraceID       string    // Unique identifier for the request.
	RemoteAddress string    // Remote IP address of the request.
	Protocol      string    // Protocol used in the request (e.g., HTTP/1.1).
	HTTPMethod    string    // HTTP method used for the request (e.g., GET).
	URL           string    // URL of the request.
}

// NewTraceID returns the trace ID sent by the client in the X-Trace-ID
// header if it is a valid UUID, and a new random UUID otherwise.
func NewTraceID(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(HeaderTraceID)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Middleware has these functionalities:
//   - Trace ID: attaches request metadata (including a trace ID) and a
//     logger carrying the trace ID to the request context.
//   - Request and response wrappers: capture the request body, limited to
//     maxRequestBodySize bytes, and the response.
//   - Panic handler: recovers from panics and logs details.
//   - Request log: logs the start and completion of the request.
//
// The provided functions are used as follows:
//   - traceIDFn: generates a unique trace ID.
//   - panicHandlerLoggerFn: logs panic details.
//   - requestLoggerFn: logs request start/completion.
//
// A maxRequestBodySize of zero or less disables the body limit.
func Middleware(
	traceIDFn func(r *http.Request) string,
	panicHandlerLoggerFn func(r *http.Request) func(messages ...any),
	requestLoggerFn func(r *http.Request) func(messages ...any),
	maxRequestBodySize int64,
) endpoint.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqMeta := &RequestMetadata{
				TimeStart:     time.Now().UTC(),
				TraceID:       traceIDFn(r),
				RemoteAddress: RequestIPAddress(r),
				Protocol:      r.Proto,
				HTTPMethod:    r.Method,
				URL:           fmt.Sprintf("%s%s", r.Host, r.URL.Path),
			}
			ctx := context.WithValue(r.Context(), requestMetadataKey, reqMeta)
			ctx = logging.WithLogger(
				ctx,
				logging.FromContext(ctx).With("trace_id", reqMeta.TraceID),
			)
			r = r.WithContext(ctx)

			rw := NewResWrap(w)
			rw.Header().Set(HeaderTraceID, reqMeta.TraceID)

			// Panic handler.
			var reqWrap *ReqWrap
			defer func() {
				if rec := recover(); rec != nil {
					handlePanic(
						rw, r, reqWrap, rec, panicHandlerLoggerFn, maxDumpPartSize,
					)
				}
			}()

			reqWrap, err := NewReqWrap(r, maxRequestBodySize)
			if err != nil {
				status := http.StatusBadRequest
				var maxBytesErr *http.MaxBytesError
				if errors.As(err, &maxBytesErr) {
					status = http.StatusRequestEntityTooLarge
				}
				http.Error(rw, http.StatusText(status), status)
				return
			}

			logRequestStart(r, reqMeta, requestLoggerFn)

			next.ServeHTTP(rw, reqWrap.Request)
			if !rw.HeaderWritten() {
				rw.WriteHeader(rw.StatusCode)
			}

			requestLoggerFn(r)("Request completed", completedLog{
				StatusCode: rw.StatusCode,
				Duration:   time.Since(reqMeta.TimeStart),
			})
		})
	}
}

// GetRequestMetadata retrieves the request metadata from the request
// context. It returns nil outside of the middleware.
func GetRequestMetadata(ctx context.Context) *RequestMetadata {
	meta, _ := ctx.Value(requestMetadataKey).(*RequestMetadata)
	return meta
}

// TraceID returns the trace ID of the request context, or an empty string.
func TraceID(ctx context.Context) string {
	if meta := GetRequestMetadata(ctx); meta != nil {
		return meta.TraceID
	}
	return ""
}

// logRequestStart logs the beginning of the request.
func logRequestStart(
	r *http.Request,
	meta *RequestMetadata,
	requestLoggerFn func(r *http.Request) func(messages ...any),
) {
	entry := requestLog{
		StartTime:     meta.TimeStart,
		RemoteAddress: meta.RemoteAddress,
		Protocol:      meta.Protocol,
		HTTPMethod:    meta.HTTPMethod,
		URL:           meta.URL,
	}
	requestLoggerFn(r)("Request started", entry)
}
