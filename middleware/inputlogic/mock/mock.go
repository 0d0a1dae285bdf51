// Package mock provides testify mocks of the inputlogic collaborators.
package mock

import (
	"net/http"

	"github.com/pakkasys/fluidquery/validation"
	"github.com/stretchr/testify/mock"
)

// MockPicker is a mock implementation of the Picker interface.
type MockPicker[T any] struct {
	mock.Mock
}

func (m *MockPicker[T]) PickObject(
	r *http.Request,
	w http.ResponseWriter,
	obj T,
) (*T, error) {
	args := m.Called(r, w, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// MockOutputHandler is a mock implementation of the OutputHandler interface.
type MockOutputHandler struct {
	mock.Mock
}

func (m *MockOutputHandler) Create(
	w http.ResponseWriter,
	r *http.Request,
	out any,
	outError error,
	statusCode int,
) error {
	args := m.Called(w, r, out, outError, statusCode)
	return args.Error(0)
}

// MockLogger is a mock implementation of the ILogger interface.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Trace(messages ...any) {
	m.Called(messages)
}

func (m *MockLogger) Error(messages ...any) {
	m.Called(messages)
}

// MockHelper records calls made on value receiver inputs.
type MockHelper struct {
	mock.Mock
}

// MockValidatedInput is a mock implementation of the ValidatedInput
// interface.
type MockValidatedInput struct {
	Value  string `json:"value"`
	helper *MockHelper
}

func (m MockValidatedInput) Validate() []validation.FieldError {
	if m.helper == nil {
		panic("MockHelper is not initialized.")
	}
	args := m.helper.Called()
	return args.Get(0).([]validation.FieldError)
}

// NewMockValidatedInput creates a MockValidatedInput with an initialized
// helper.
func NewMockValidatedInput(helper *MockHelper) MockValidatedInput {
	return MockValidatedInput{helper: helper}
}
