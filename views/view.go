// Package views stores named permalinks: a path plus a query and a fragment
// kept in their encoded query string form.
package views

import (
	"time"

	"github.com/pakkasys/fluidquery/client"
	"github.com/pakkasys/fluidquery/urlencoder"
	"github.com/pakkasys/fluidquery/validation"
)

// View is a saved permalink.
type View struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      []string  `json:"path"`
	Query     string    `json:"query"`    // encoded query
	Fragment  string    `json:"fragment"` // encoded fragment
	CreatedAt time.Time `json:"created_at"`
}

// URL returns the composed URL of the view.
func (v *View) URL() string {
	return client.BuildEncodedURL(v.Path, v.Query, v.Fragment)
}

// QueryValue returns the decoded query.
func (v *View) QueryValue() any {
	return urlencoder.Decode(v.Query)
}

// FragmentValue returns the decoded fragment.
func (v *View) FragmentValue() any {
	return urlencoder.Decode(v.Fragment)
}

var validate = validation.NewValidation()

// CreateInput is the input of Service.Create. Query and Fragment are nested
// values.
type CreateInput struct {
	Name     string      `json:"name" validate:"required,max=128,excludesall=/?#"`
	Path     client.Path `json:"path" validate:"required,min=1,max=64"`
	Query    any         `json:"query"`
	Fragment any         `json:"fragment"`
}

// Validate validates the input.
func (i CreateInput) Validate() []validation.FieldError {
	return validate.Validate(i)
}

// Default and maximum page sizes of List.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// ListOptions pages the results of List.
type ListOptions struct {
	Limit  int `json:"limit" validate:"gte=0,lte=1000"`
	Offset int `json:"offset" validate:"gte=0"`
}

// Validate validates the options.
func (o ListOptions) Validate() []validation.FieldError {
	return validate.Validate(o)
}

func (o ListOptions) withDefaults() ListOptions {
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	return o
}
