package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pakkasys/fluidquery/api"
	"github.com/pakkasys/fluidquery/client"
	"github.com/pakkasys/fluidquery/database"
	"github.com/pakkasys/fluidquery/endpoint"
	"github.com/pakkasys/fluidquery/middleware/inputlogic"
	"github.com/pakkasys/fluidquery/urlencoder"
	"github.com/pakkasys/fluidquery/validation"
	"github.com/pakkasys/fluidquery/views"
)

// Endpoint paths.
const (
	DecodePath  = "/v1/decode"
	EncodePath  = "/v1/encode"
	URLPath     = "/v1/url"
	ViewsPath   = "/v1/views"
	ViewPath    = "/v1/views/{name}"
	ViewGoPath  = "/v1/views/{name}/go"
	MetricsPath = "/metrics"
)

// Codec operations reported to the observer.
const (
	OperationEncode = "encode"
	OperationDecode = "decode"
	OperationURL    = "url"
	OutcomeOK       = "ok"
)

// Expected errors of the view endpoints.
var (
	ViewCreateErrors = api.ExpectedErrors{
		api.NewExpectedError(database.DuplicateEntryError.ID, http.StatusConflict),
	}

	ViewGetErrors = api.ExpectedErrors{
		api.NewExpectedError(database.NoRowsError.ID, http.StatusNotFound),
	}
)

// DecodeInput is the raw query of a decode request.
type DecodeInput struct {
	Query string
}

// Validate implements inputlogic.ValidatedInput.
func (DecodeInput) Validate() []validation.FieldError { return nil }

// EncodeInput is the nested value sent as the body of an encode request.
type EncodeInput struct {
	Value any
}

// Validate implements inputlogic.ValidatedInput.
func (EncodeInput) Validate() []validation.FieldError { return nil }

// EncodeOutput is the output of the encode endpoint.
type EncodeOutput struct {
	Query string `json:"query"`
}

// URLInput is the input of the URL endpoint.
type URLInput struct {
	client.URLParts
}

// Validate requires at least one path segment.
func (i URLInput) Validate() []validation.FieldError {
	if len(i.Path) == 0 {
		return []validation.FieldError{{
			Field:   "path",
			Message: `Validation failed on rule "required"`,
		}}
	}
	return nil
}

// URLOutput is the output of the URL endpoint.
type URLOutput struct {
	URL string `json:"url"`
}

// ViewNameInput selects a view by the name in the URL path.
type ViewNameInput struct {
	Name string `json:"name" source:"path"`
}

// Validate requires a name.
func (i ViewNameInput) Validate() []validation.FieldError {
	if i.Name == "" {
		return []validation.FieldError{{
			Field:   "name",
			Message: `Validation failed on rule "required"`,
		}}
	}
	return nil
}

// ViewOutput is a stored view with its composed URL.
type ViewOutput struct {
	*views.View
	URL string `json:"url"`
}

func newViewOutput(view *views.View) *ViewOutput {
	return &ViewOutput{View: view, URL: view.URL()}
}

// ListViewsOutput is a page of views.
type ListViewsOutput struct {
	Views []ViewOutput `json:"views"`
	Total int          `json:"total"`
}

// DeleteViewOutput is the output of the delete endpoint.
type DeleteViewOutput struct {
	Deleted int64 `json:"deleted"`
}

// endpoints builds the endpoint definitions.
type endpoints struct {
	stack    *endpoint.Stack
	output   inputlogic.OutputHandler
	loggerFn api.LoggerFn
	observer Observer
	views    *views.Service
}

func (e *endpoints) codecDefinitions() []endpoint.Definition {
	return []endpoint.Definition{
		{
			URL:    DecodePath,
			Method: http.MethodGet,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.decode,
				func() *DecodeInput { return &DecodeInput{} },
				nil,
				inputlogic.PickerFunc[DecodeInput](pickRawQuery),
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    EncodePath,
			Method: http.MethodPost,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.encode,
				func() *EncodeInput { return &EncodeInput{} },
				nil,
				inputlogic.PickerFunc[EncodeInput](pickBodyValue),
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    URLPath,
			Method: http.MethodPost,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.buildURL,
				func() *URLInput { return &URLInput{} },
				nil,
				inputlogic.PickerFunc[URLInput](pickJSONBody[URLInput]),
				e.output,
				e.loggerFn,
			),
		},
	}
}

func (e *endpoints) viewDefinitions() []endpoint.Definition {
	namePicker := inputlogic.NewObjectPicker[ViewNameInput](urlencoder.URLEncoder{})
	newNameInput := func() *ViewNameInput { return &ViewNameInput{} }

	return []endpoint.Definition{
		{
			URL:    ViewsPath,
			Method: http.MethodPost,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.createView,
				func() *views.CreateInput { return &views.CreateInput{} },
				ViewCreateErrors,
				inputlogic.NewObjectPicker[views.CreateInput](urlencoder.URLEncoder{}),
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    ViewsPath,
			Method: http.MethodGet,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.listViews,
				func() *views.ListOptions { return &views.ListOptions{} },
				nil,
				inputlogic.PickerFunc[views.ListOptions](pickDecodedQuery[views.ListOptions]),
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    ViewPath,
			Method: http.MethodGet,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.getView,
				newNameInput,
				ViewGetErrors,
				namePicker,
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    ViewGoPath,
			Method: http.MethodGet,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.redirectView,
				newNameInput,
				ViewGetErrors,
				namePicker,
				e.output,
				e.loggerFn,
			),
		},
		{
			URL:    ViewPath,
			Method: http.MethodDelete,
			Stack:  e.stack,
			Handler: inputlogic.Handler(
				e.deleteView,
				newNameInput,
				nil,
				namePicker,
				e.output,
				e.loggerFn,
			),
		},
	}
}

func (e *endpoints) decode(
	_ http.ResponseWriter, _ *http.Request, input *DecodeInput,
) (*any, error) {
	value := urlencoder.Decode(input.Query)
	e.observe(OperationDecode)
	return &value, nil
}

func (e *endpoints) encode(
	_ http.ResponseWriter, _ *http.Request, input *EncodeInput,
) (*EncodeOutput, error) {
	query := urlencoder.Encode(input.Value)
	e.observe(OperationEncode)
	return &EncodeOutput{Query: query}, nil
}

func (e *endpoints) buildURL(
	_ http.ResponseWriter, _ *http.Request, input *URLInput,
) (*URLOutput, error) {
	out := &URLOutput{URL: client.BuildURL(input.URLParts)}
	e.observe(OperationURL)
	return out, nil
}

func (e *endpoints) createView(
	_ http.ResponseWriter, r *http.Request, input *views.CreateInput,
) (*ViewOutput, error) {
	view, err := e.views.Create(r.Context(), *input)
	if err != nil {
		return nil, err
	}
	return newViewOutput(view), nil
}

func (e *endpoints) listViews(
	_ http.ResponseWriter, r *http.Request, input *views.ListOptions,
) (*ListViewsOutput, error) {
	page, total, err := e.views.List(r.Context(), *input)
	if err != nil {
		return nil, err
	}
	out := &ListViewsOutput{
		Views: make([]ViewOutput, 0, len(page)),
		Total: total,
	}
	for i := range page {
		out.Views = append(out.Views, *newViewOutput(&page[i]))
	}
	return out, nil
}

func (e *endpoints) getView(
	_ http.ResponseWriter, r *http.Request, input *ViewNameInput,
) (*ViewOutput, error) {
	view, err := e.views.Get(r.Context(), input.Name)
	if err != nil {
		return nil, err
	}
	return newViewOutput(view), nil
}

// redirectView answers with a redirect to the composed URL of the view.
func (e *endpoints) redirectView(
	w http.ResponseWriter, r *http.Request, input *ViewNameInput,
) (*ViewOutput, error) {
	location, err := e.views.Resolve(r.Context(), input.Name)
	if err != nil {
		return nil, err
	}
	http.Redirect(w, r, location, http.StatusFound)
	return nil, nil
}

func (e *endpoints) deleteView(
	_ http.ResponseWriter, r *http.Request, input *ViewNameInput,
) (*DeleteViewOutput, error) {
	count, err := e.views.Delete(r.Context(), input.Name)
	if err != nil {
		return nil, err
	}
	return &DeleteViewOutput{Deleted: count}, nil
}

func (e *endpoints) observe(operation string) {
	if e.observer != nil {
		e.observer.ObserveOperation(operation, OutcomeOK)
	}
}

func pickRawQuery(
	r *http.Request, _ http.ResponseWriter, obj DecodeInput,
) (*DecodeInput, error) {
	obj.Query = r.URL.RawQuery
	return &obj, nil
}

func pickBodyValue(
	r *http.Request, _ http.ResponseWriter, obj EncodeInput,
) (*EncodeInput, error) {
	if err := decodeJSONBody(r, &obj.Value); err != nil {
		return nil, err
	}
	return &obj, nil
}

func pickJSONBody[T any](
	r *http.Request, _ http.ResponseWriter, obj T,
) (*T, error) {
	if err := decodeJSONBody(r, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// pickDecodedQuery maps the decoded URL query onto the input.
func pickDecodedQuery[T any](
	r *http.Request, _ http.ResponseWriter, obj T,
) (*T, error) {
	if err := urlencoder.DecodeInto(r.URL.RawQuery, &obj); err != nil {
		return nil, validation.InvalidInputError.WithData(err.Error())
	}
	return &obj, nil
}

// decodeJSONBody decodes the request body into target keeping numbers as
// json.Number. An empty body leaves target unchanged.
func decodeJSONBody(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return validation.InvalidInputError.WithData(
			"invalid JSON body: " + err.Error(),
		)
	}
	return nil
}
