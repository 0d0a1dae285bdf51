package database

// ColumnKind is a dialect independent column type.
type ColumnKind int

// Column kinds. Each dialect maps them to a native column type.
const (
	KindString    ColumnKind = iota // short indexed string
	KindText                        // unbounded text
	KindTimestamp                   // time with sub-second precision
	KindInteger
)

// ColumnDefinition describes a column of a created table.
type ColumnDefinition struct {
	Name       string
	Kind       ColumnKind
	Type       string // native type, overrides Kind when set
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	Default    *string
}

// Selector is an equality condition on a column.
type Selector struct {
	Column string
	Value  any
}

// OrderDirection is the direction of an ORDER BY clause.
type OrderDirection string

// Order directions.
const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// Order orders the results of a query by a column.
type Order struct {
	Column    string
	Direction OrderDirection
}

// Page limits the results of a query.
type Page struct {
	Offset int
	Limit  int
}

// GetOptions are the options of a select query.
type GetOptions struct {
	Columns   []string
	Selectors []Selector
	Orders    []Order
	Page      *Page
}

// QueryBuilder builds the SQL statements of a dialect.
type QueryBuilder interface {
	Insert(table string, columns []string, values []any) (string, []any)
	Get(table string, opts *GetOptions) (string, []any)
	Count(table string, selectors []Selector) (string, []any)
	Delete(table string, selectors []Selector) (string, []any)
	CreateTableQuery(
		table string, ifNotExists bool, columns []ColumnDefinition,
	) string
}

// Dialect combines the query builder and error checker of a driver.
type Dialect interface {
	QueryBuilder
	ErrorChecker
	Driver() string
}
