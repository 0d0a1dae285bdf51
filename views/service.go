package views

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pakkasys/fluidquery/urlencoder"
	"github.com/pakkasys/fluidquery/validation"
)

// Operations reported to the observer.
const (
	OperationCreate = "view_create"
	OperationGet    = "view_get"
	OperationList   = "view_list"
	OperationDelete = "view_delete"
)

// Outcomes reported to the observer.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Observer records the outcome of an operation.
type Observer interface {
	ObserveOperation(operation string, outcome string)
}

// Service creates, resolves and deletes views.
type Service struct {
	repository Repository
	observer   Observer
	newID      func() string
	now        func() time.Time
}

// NewService returns a new Service. The observer may be nil.
func NewService(repository Repository, observer Observer) *Service {
	return &Service{
		repository: repository,
		observer:   observer,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Create validates the input, encodes its query and fragment and stores
// the view.
func (s *Service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if err := validation.Error(input.Validate()); err != nil {
		s.observe(OperationCreate, err)
		return nil, err
	}

	view := &View{
		ID:        s.newID(),
		Name:      input.Name,
		Path:      []string(input.Path),
		Query:     urlencoder.Encode(input.Query),
		Fragment:  urlencoder.Encode(input.Fragment),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	err := s.repository.Insert(ctx, view)
	s.observe(OperationCreate, err)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Get returns the view with the given name.
func (s *Service) Get(ctx context.Context, name string) (*View, error) {
	view, err := s.repository.GetByName(ctx, name)
	s.observe(OperationGet, err)
	return view, err
}

// List returns a page of views and the total number of views.
func (s *Service) List(
	ctx context.Context, opts ListOptions,
) ([]View, int, error) {
	if err := validation.Error(opts.Validate()); err != nil {
		s.observe(OperationList, err)
		return nil, 0, err
	}

	views, err := s.repository.List(ctx, opts.withDefaults())
	if err != nil {
		s.observe(OperationList, err)
		return nil, 0, err
	}
	total, err := s.repository.Count(ctx)
	s.observe(OperationList, err)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Delete removes the view with the given name and returns the number of
// deleted views.
func (s *Service) Delete(ctx context.Context, name string) (int64, error) {
	count, err := s.repository.Delete(ctx, name)
	s.observe(OperationDelete, err)
	return count, err
}

// Resolve returns the composed URL of the view with the given name.
func (s *Service) Resolve(ctx context.Context, name string) (string, error) {
	view, err := s.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return view.URL(), nil
}

func (s *Service) observe(operation string, err error) {
	if s.observer == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	s.observer.ObserveOperation(operation, outcome)
}
