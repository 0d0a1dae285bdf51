package api

import (
	"errors"
	"net/http"
)

// InternalServerError represents an internal server error.
var InternalServerError = NewAPIError("INTERNAL_SERVER_ERROR")

// ErrorHandler maps errors to HTTP statuses and client-safe API errors.
type ErrorHandler struct {
	expectedErrs ExpectedErrors
}

// NewErrorHandler creates a new ErrorHandler.
//
// Parameters:
//   - expectedErrs: The errors that are passed through to clients. Any other
//     error is reported as InternalServerError.
//
// Returns:
//   - *ErrorHandler: A new ErrorHandler.
func NewErrorHandler(expectedErrs ExpectedErrors) *ErrorHandler {
	return &ErrorHandler{
		expectedErrs: expectedErrs,
	}
}

// Handle returns the HTTP status code and API error for err.
//
// Parameters:
//   - err: The error to handle.
//
// Returns:
//   - int: The HTTP status code.
//   - *APIError: The mapped API error.
func (e ErrorHandler) Handle(err error) (int, *APIError) {
	var apiError *APIError
	if !errors.As(err, &apiError) {
		return http.StatusInternalServerError, InternalServerError
	}
	expectedError := e.getExpectedError(apiError)
	if expectedError == nil {
		return http.StatusInternalServerError, InternalServerError
	}
	return expectedError.maskAPIError(apiError)
}

// getExpectedError finds the ExpectedError matching the API error. An
// expected error without an origin matches errors from any origin.
func (e ErrorHandler) getExpectedError(apiError *APIError) *ExpectedError {
	for i := range e.expectedErrs {
		expected := &e.expectedErrs[i]
		if apiError.ID != expected.ID {
			continue
		}
		if expected.Origin == "" || expected.Origin == apiError.Origin {
			return expected
		}
	}
	return nil
}

// ExpectedError represents an expected error configuration.
type ExpectedError struct {
	ID         string // The ID of the expected error.
	MaskedID   string // An optional ID to mask the original error ID in the response.
	Status     int    // The HTTP status code to return for this error.
	PublicData bool   // Whether to include the error data in the response.
	Origin     string // The origin of the error. Empty matches any origin.
}

// NewExpectedError creates a new ExpectedError.
//
// Parameters:
//   - id: The ID of the expected error.
//   - status: The HTTP status code to return for this error.
//
// Returns:
//   - ExpectedError: The new ExpectedError.
func NewExpectedError(id string, status int) ExpectedError {
	return ExpectedError{
		ID:     id,
		Status: status,
	}
}

// WithMaskedID returns a copy with the given masked ID.
func (e ExpectedError) WithMaskedID(maskedID string) ExpectedError {
	e.MaskedID = maskedID
	return e
}

// WithPublicData returns a copy with the public data flag set.
func (e ExpectedError) WithPublicData(isPublic bool) ExpectedError {
	e.PublicData = isPublic
	return e
}

// WithOrigin returns a copy that only matches errors of the given origin.
func (e ExpectedError) WithOrigin(origin string) ExpectedError {
	e.Origin = origin
	return e
}

// maskAPIError masks the ID and data of the API error as configured.
func (e *ExpectedError) maskAPIError(apiError *APIError) (int, *APIError) {
	useErrorID := e.ID
	if e.MaskedID != "" {
		useErrorID = e.MaskedID
	}

	var useData any
	if e.PublicData {
		useData = apiError.Data
	}

	return e.Status, NewAPIError(useErrorID).WithData(useData)
}

// ExpectedErrors is a slice of ExpectedError.
type ExpectedErrors []ExpectedError

// With returns a new slice with the errors appended to the slice.
func (e ExpectedErrors) With(errs ...ExpectedError) ExpectedErrors {
	newSlice := append(ExpectedErrors{}, e...)
	return append(newSlice, errs...)
}

// GetByID returns the ExpectedError with the given ID, or nil if not found.
func (e ExpectedErrors) GetByID(id string) *ExpectedError {
	for i := range e {
		if e[i].ID == id {
			return &e[i]
		}
	}
	return nil
}
