package api

import "fmt"

// APIError is an error with a stable ID that can be sent to clients.
type APIError struct {
	ID     string `json:"id"`               // Stable error identifier.
	Data   any    `json:"data,omitempty"`   // Optional error details.
	Origin string `json:"origin,omitempty"` // System that produced the error.
}

// NewAPIError returns a new APIError with the given ID.
func NewAPIError(id string) *APIError {
	return &APIError{ID: id}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Data == nil {
		return e.ID
	}
	return fmt.Sprintf("%s: %v", e.ID, e.Data)
}

// WithData returns a copy of the error with the given data.
func (e *APIError) WithData(data any) *APIError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// WithOrigin returns a copy of the error with the given origin.
func (e *APIError) WithOrigin(origin string) *APIError {
	newErr := *e
	newErr.Origin = origin
	return &newErr
}

// Is reports whether target is an APIError with the same ID, so that
// errors.Is matches copies made by WithData and WithOrigin.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.ID == e.ID
}
