// Package endpoint describes HTTP endpoints and their middleware stacks.
package endpoint

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Wrapper is a middleware identified by an ID so that stacks can be
// extended at known positions.
type Wrapper struct {
	ID         string
	Middleware Middleware
}

// Stack is an ordered list of middleware wrappers. The first wrapper is the
// outermost one.
type Stack []Wrapper

// NewStack returns a stack of the given wrappers.
func NewStack(wrappers ...Wrapper) *Stack {
	stack := Stack(slices.Clone(wrappers))
	return &stack
}

// InsertAfter returns a copy of the stack with the wrapper inserted after
// the wrapper with the given ID. It reports false if the ID is not found.
func (s Stack) InsertAfter(id string, wrapper Wrapper) (*Stack, bool) {
	for i := range s {
		if s[i].ID == id {
			stack := slices.Insert(slices.Clone(s), i+1, wrapper)
			return &stack, true
		}
	}
	return &s, false
}

// InsertBefore returns a copy of the stack with the wrapper inserted before
// the wrapper with the given ID. It reports false if the ID is not found.
func (s Stack) InsertBefore(id string, wrapper Wrapper) (*Stack, bool) {
	for i := range s {
		if s[i].ID == id {
			stack := slices.Insert(slices.Clone(s), i, wrapper)
			return &stack, true
		}
	}
	return &s, false
}

// Middlewares returns the middlewares of the stack in order.
func (s Stack) Middlewares() []Middleware {
	middlewares := make([]Middleware, len(s))
	for i := range s {
		middlewares[i] = s[i].Middleware
	}
	return middlewares
}

// Handler wraps the handler with the middlewares of the stack.
func (s Stack) Handler(handler http.Handler) http.Handler {
	return ApplyMiddlewares(handler, s.Middlewares()...)
}

// ApplyMiddlewares wraps the handler so that the first middleware runs
// first.
func ApplyMiddlewares(
	handler http.Handler, middlewares ...Middleware,
) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Definition is an endpoint served at Method and URL.
type Definition struct {
	URL     string
	Method  string
	Stack   *Stack
	Handler http.Handler
}

// HTTPHandler returns the endpoint handler wrapped in its stack.
func (d *Definition) HTTPHandler() http.Handler {
	if d.Stack == nil {
		return d.Handler
	}
	return d.Stack.Handler(d.Handler)
}
