package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/pakkasys/fluidquery/database"
)

// SQLiteErrorCode is an extended SQLite result code.
type SQLiteErrorCode int

// Extended result codes of constraint violations.
var (
	DuplicateEntryErrorCode    = SQLiteErrorCode(sqlite3.ErrConstraintUnique)
	PrimaryKeyErrorCode        = SQLiteErrorCode(sqlite3.ErrConstraintPrimaryKey)
	ForeignConstraintErrorCode = SQLiteErrorCode(sqlite3.ErrConstraintForeignKey)
)

// ErrorChecker is a SQLite error checker.
type ErrorChecker struct{}

// Check attempts to match a given error against common SQLite errors.
func (c *ErrorChecker) Check(err error) error {
	if err == nil {
		return nil
	}
	if isSQLiteErrorCode(err, DuplicateEntryErrorCode) ||
		isSQLiteErrorCode(err, PrimaryKeyErrorCode) {
		return database.DuplicateEntryError.WithData(err.Error())
	} else if isSQLiteErrorCode(err, ForeignConstraintErrorCode) {
		return database.ForeignConstraintError.WithData(err.Error())
	} else if errors.Is(err, sql.ErrNoRows) {
		return database.NoRowsError
	}
	return err
}

// isSQLiteErrorCode checks whether err is a sqlite3.Error and if its
// ExtendedCode matches the desired code.
func isSQLiteErrorCode(err error, code SQLiteErrorCode) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return int(sqliteErr.ExtendedCode) == int(code)
	}
	return false
}
