// Package inputlogic runs endpoint logic: it picks the input from the
// request, validates it, calls the endpoint callback and writes the output.
package inputlogic

import (
	"fmt"
	"net/http"

	"github.com/pakkasys/fluidquery/api"
	"github.com/pakkasys/fluidquery/validation"
)

// ValidatedInput is an endpoint input that validates itself.
type ValidatedInput interface {
	Validate() []validation.FieldError
}

// Picker fills an input object from a request.
type Picker[T any] interface {
	PickObject(r *http.Request, w http.ResponseWriter, obj T) (*T, error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc[T any] func(
	r *http.Request, w http.ResponseWriter, obj T,
) (*T, error)

// PickObject calls f(r, w, obj).
func (f PickerFunc[T]) PickObject(
	r *http.Request, w http.ResponseWriter, obj T,
) (*T, error) {
	return f(r, w, obj)
}

// OutputHandler writes the endpoint output.
type OutputHandler interface {
	Create(
		w http.ResponseWriter,
		r *http.Request,
		out any,
		outError error,
		status int,
	) error
}

// Callback is the endpoint logic. Returning a nil output and a nil error
// means that the callback has written the response itself.
type Callback[I any, O any] func(
	w http.ResponseWriter, r *http.Request, input *I,
) (*O, error)

// invalidInput is always passed through to clients with its field errors.
var invalidInput = api.NewExpectedError(
	validation.InvalidInputError.ID, http.StatusBadRequest,
).WithPublicData(true)

// Handler constructs a handler that picks and validates the input, calls
// the callback and writes its output.
//
//   - callback: The endpoint logic.
//   - inputFactory: Returns a new blank input.
//   - expectedErrors: Errors passed through to the client.
//   - picker: Fills the input from the request.
//   - outputHandler: Writes the output.
//   - loggerFn: Returns the request logger. May be nil.
func Handler[I ValidatedInput, O any](
	callback Callback[I, O],
	inputFactory func() *I,
	expectedErrors api.ExpectedErrors,
	picker Picker[I],
	outputHandler OutputHandler,
	loggerFn api.LoggerFn,
) http.Handler {
	errorHandler := api.NewErrorHandler(
		expectedErrors.With(invalidInput),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := handler[I, O]{
			errorHandler:  errorHandler,
			outputHandler: outputHandler,
			loggerFn:      loggerFn,
		}

		input, err := picker.PickObject(r, w, *inputFactory())
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		h.logger(r).Trace("Input", input)

		if fieldErrors := (*input).Validate(); len(fieldErrors) != 0 {
			h.handleError(w, r, validation.Error(fieldErrors))
			return
		}

		out, err := callback(w, r, input)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		if out == nil {
			return
		}

		h.handleOutput(w, r, out, nil, http.StatusOK)
	})
}

type handler[I any, O any] struct {
	errorHandler  *api.ErrorHandler
	outputHandler OutputHandler
	loggerFn      api.LoggerFn
}

// handleError maps errors and writes the error response.
func (h handler[I, O]) handleError(
	w http.ResponseWriter, r *http.Request, err error,
) {
	statusCode, outError := h.errorHandler.Handle(err)
	message := fmt.Sprintf(
		"Error, status: %d, err: %s, out: %s", statusCode, err, outError,
	)
	if statusCode >= http.StatusInternalServerError {
		h.logger(r).Error(message)
	} else {
		h.logger(r).Trace(message)
	}
	h.handleOutput(w, r, nil, outError, statusCode)
}

// handleOutput writes the endpoint response.
func (h handler[I, O]) handleOutput(
	w http.ResponseWriter,
	r *http.Request,
	out any,
	outputError error,
	statusCode int,
) {
	err := h.outputHandler.Create(w, r, out, outputError, statusCode)
	if err != nil {
		h.logger(r).Error("Output error", err)
	}
}

func (h handler[I, O]) logger(r *http.Request) api.ILogger {
	if h.loggerFn == nil {
		return nopLogger{}
	}
	return h.loggerFn(r)
}

type nopLogger struct{}

func (nopLogger) Trace(...any) {}
func (nopLogger) Error(...any) {}
