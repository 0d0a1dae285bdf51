package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Constants for HTTP headers and content types.
const (
	contentType     = "Content-Type"
	applicationJSON = "application/json"
)

// Error represents a generic error.
var Error = NewAPIError("ERROR")

// APIOutput is the JSON envelope of every response.
type APIOutput[T any] struct {
	Payload *T        `json:"payload,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// ILogger represents a logger interface.
type ILogger interface {
	Trace(messages ...any)
	Error(messages ...any)
}

// LoggerFn represents a function that returns a logger for a request.
type LoggerFn func(r *http.Request) ILogger

// JSONOutput writes APIOutput envelopes.
type JSONOutput struct {
	loggerFn    LoggerFn
	errorOrigin string
}

// NewJSONOutput returns a new JSONOutput.
//
// Parameters:
//   - loggerFn: The logger function. May be nil.
//   - errorOrigin: The origin set on API errors written by this output.
//
// Returns:
//   - JSONOutput: The new JSONOutput.
func NewJSONOutput(loggerFn LoggerFn, errorOrigin string) JSONOutput {
	return JSONOutput{
		loggerFn:    loggerFn,
		errorOrigin: errorOrigin,
	}
}

// Create marshals the output to JSON and writes it to the response.
// If the logger is not nil, it will log the output.
//
// Parameters:
//   - w: The response writer.
//   - r: The request.
//   - out: The output data.
//   - outError: The output error.
//   - status: The HTTP status code.
//
// Returns:
//   - error: An error if writing the response fails.
func (o JSONOutput) Create(
	w http.ResponseWriter, r *http.Request, out any, outError error, status int,
) error {
	output, err := o.jsonOutput(w, out, outError, status)
	if err != nil {
		if o.loggerFn != nil {
			o.loggerFn(r).Error("Error handling output JSON", err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	if o.loggerFn != nil {
		o.loggerFn(r).Trace("Client output", output)
	}
	return nil
}

func (o JSONOutput) jsonOutput(
	w http.ResponseWriter, outputData any, outputError error, statusCode int,
) (*APIOutput[any], error) {
	output := APIOutput[any]{Error: o.handleError(outputError)}
	if outputData != nil {
		output.Payload = &outputData
	}

	jsonData, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}

	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return nil, err
	}

	return &output, nil
}

// handleError returns the API error if outputError is or wraps an *APIError,
// and the generic Error otherwise. Returns nil if the error is nil.
func (o JSONOutput) handleError(outputError error) *APIError {
	if outputError == nil {
		return nil
	}
	var apiError *APIError
	if errors.As(outputError, &apiError) {
		return apiError.WithOrigin(o.errorOrigin)
	}
	return Error
}
