// Package middleware assembles the middleware stacks of the HTTP endpoints.
package middleware

import (
	"net/http"

	"github.com/pakkasys/fluidquery/endpoint"
	"github.com/pakkasys/fluidquery/middleware/cors"
	"github.com/pakkasys/fluidquery/middleware/reqhandler"
)

// Middleware IDs.
const (
	CORSMiddlewareID           = "cors"
	RequestHandlerMiddlewareID = "request_handler"
	MetricsMiddlewareID        = "metrics"
)

// CORSWrapper creates a new wrapper with the CORS middleware.
//
//   - allowedOrigins: The list of allowed origins
//   - allowedMethods: The list of allowed methods
//   - allowedHeaders: The list of allowed headers
func CORSWrapper(
	allowedOrigins []string, allowedMethods []string, allowedHeaders []string,
) *endpoint.Wrapper {
	return &endpoint.Wrapper{
		ID: CORSMiddlewareID,
		Middleware: cors.Middleware(
			allowedOrigins,
			allowedMethods,
			allowedHeaders,
		),
	}
}

// RequestHandlerMiddlewareWrapper creates a new wrapper for the request
// handler middleware.
//
//   - traceIDFn: A function that generates a unique trace ID.
//   - panicHandlerLoggerFn: A function that logs panic details.
//   - requestLoggerFn: A function that logs request start/completion.
//   - maxRequestBodySize: The maximum request body size in bytes.
func RequestHandlerMiddlewareWrapper(
	traceIDFn func(r *http.Request) string,
	panicHandlerLoggerFn func(r *http.Request) func(messages ...any),
	requestLoggerFn func(r *http.Request) func(messages ...any),
	maxRequestBodySize int64,
) *endpoint.Wrapper {
	return &endpoint.Wrapper{
		ID: RequestHandlerMiddlewareID,
		Middleware: reqhandler.Middleware(
			traceIDFn,
			panicHandlerLoggerFn,
			requestLoggerFn,
			maxRequestBodySize,
		),
	}
}

// MetricsWrapper creates a new wrapper for a metrics middleware.
func MetricsWrapper(middleware endpoint.Middleware) *endpoint.Wrapper {
	return &endpoint.Wrapper{
		ID:         MetricsMiddlewareID,
		Middleware: middleware,
	}
}
