package sqlite

import "github.com/pakkasys/fluidquery/database"

// Dialect is the SQLite database dialect.
type Dialect struct {
	Query
	ErrorChecker
}

// NewDialect returns the SQLite dialect.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Driver returns the name of the database/sql driver.
func (d *Dialect) Driver() string {
	return database.SQLite3
}
