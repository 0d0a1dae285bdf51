package middleware

import (
	"fmt"
	"net/http"

	"github.com/pakkasys/fluidquery/endpoint"
)

// StackBuilder builds a middleware stack that starts with the request
// handler middleware.
type StackBuilder struct {
	stack  *endpoint.Stack
	lastID string
}

// NewStackBuilder returns a new instance.
func NewStackBuilder(
	traceIDFn func(r *http.Request) string,
	panicHandlerLoggerFn func(r *http.Request) func(messages ...any),
	requestLoggerFn func(r *http.Request) func(messages ...any),
	maxRequestBodySize int64,
) *StackBuilder {
	return &StackBuilder{
		stack: endpoint.NewStack(
			*RequestHandlerMiddlewareWrapper(
				traceIDFn,
				panicHandlerLoggerFn,
				requestLoggerFn,
				maxRequestBodySize,
			),
		),
		lastID: RequestHandlerMiddlewareID,
	}
}

// Build returns the middleware stack.
func (b *StackBuilder) Build() *endpoint.Stack {
	return b.stack
}

// MustAddMiddleware appends middleware to the stack in the given order and
// panics if it fails.
func (b *StackBuilder) MustAddMiddleware(
	wrapper ...endpoint.Wrapper,
) *StackBuilder {
	for i := range wrapper {
		stack, success := b.stack.InsertAfter(b.lastID, wrapper[i])
		if !success {
			panic(fmt.Sprintf("Failed to add middleware: %s", wrapper[i].ID))
		}
		b.stack = stack
		b.lastID = wrapper[i].ID
	}
	return b
}
