package mysql

import "github.com/pakkasys/fluidquery/database"

// Dialect is the MySQL database dialect.
type Dialect struct {
	Query
	ErrorChecker
}

// NewDialect returns the MySQL dialect.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Driver returns the name of the database/sql driver.
func (d *Dialect) Driver() string {
	return database.MySQL
}
