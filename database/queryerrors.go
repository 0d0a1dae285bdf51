package database

import "github.com/pakkasys/fluidquery/api"

// Common database errors.
var (
	DuplicateEntryError    = api.NewAPIError("DUPLICATE_ENTRY")
	ForeignConstraintError = api.NewAPIError("FOREIGN_CONSTRAINT_ERROR")
	NoRowsError            = api.NewAPIError("NO_ROWS")
)

// ErrorChecker translates driver errors into the common database errors.
// Errors it does not recognize are returned unchanged.
type ErrorChecker interface {
	Check(err error) error
}
