package mysql

import (
	"fmt"
	"strings"

	"github.com/pakkasys/fluidquery/database"
)

// Query is a query builder for MySQL.
type Query struct{}

// Insert returns the query and values to insert a row.
//
// Parameters:
//   - tableName: The name of the database table.
//   - columns: The inserted columns.
//   - values: The values, one per column.
//
// Returns:
//   - string: The query.
//   - []any: The values.
func (q *Query) Insert(
	tableName string, columns []string, values []any,
) (string, []any) {
	query := fmt.Sprintf(
		"INSERT INTO `%s` (%s) VALUES (%s)",
		tableName,
		quoteColumns(columns),
		createPlaceholders(len(values)),
	)
	return query, values
}

// Get returns a select query.
//
// Parameters:
//   - tableName: The name of the database table.
//   - opts: The options for the query.
//
// Returns:
//   - string: The query.
//   - []any: The values.
func (q *Query) Get(
	tableName string, opts *database.GetOptions,
) (string, []any) {
	whereClause, whereValues := whereClause(opts.Selectors)

	columns := "*"
	if len(opts.Columns) != 0 {
		columns = quoteColumns(opts.Columns)
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM `%s`", columns, tableName))
	if whereClause != "" {
		builder.WriteString(" " + whereClause)
	}
	if len(opts.Orders) != 0 {
		builder.WriteString(" " + getOrderClauseFromOrders(opts.Orders))
	}
	if opts.Page != nil {
		builder.WriteString(" " + getLimitOffsetClauseFromPage(opts.Page))
	}

	return builder.String(), whereValues
}

// Count returns a count query.
//
// Parameters:
//   - tableName: The name of the database table.
//   - selectors: The selectors for the counted rows.
//
// Returns:
//   - string: The query.
//   - []any: The values.
func (q *Query) Count(
	tableName string, selectors []database.Selector,
) (string, []any) {
	whereClause, whereValues := whereClause(selectors)
	query := strings.TrimSpace(fmt.Sprintf(
		"SELECT COUNT(*) FROM `%s` %s", tableName, whereClause,
	))
	return query, whereValues
}

// Delete returns the SQL query string and the values for the query.
//
// Parameters:
//   - tableName: The name of the database table.
//   - selectors: The selectors for the rows to delete.
//
// Returns:
//   - string: The query.
//   - []any: The values.
func (q *Query) Delete(
	tableName string, selectors []database.Selector,
) (string, []any) {
	whereClause, whereValues := whereClause(selectors)
	query := strings.TrimSpace(fmt.Sprintf(
		"DELETE FROM `%s` %s", tableName, whereClause,
	))
	return query, whereValues
}

// CreateTableQuery generates a SQL query for creating a table.
//   - tableName: the name of the table.
//   - ifNotExists: if true, adds IF NOT EXISTS.
//   - columns: a slice of ColumnDefinition, one per column.
func (q *Query) CreateTableQuery(
	tableName string,
	ifNotExists bool,
	columns []database.ColumnDefinition,
) string {
	var builder strings.Builder

	builder.WriteString("CREATE TABLE ")
	if ifNotExists {
		builder.WriteString("IF NOT EXISTS ")
	}
	builder.WriteString(fmt.Sprintf("`%s` (\n", tableName))

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		def := fmt.Sprintf("  `%s` %s", col.Name, columnType(col))
		if col.NotNull {
			def += " NOT NULL"
		} else {
			def += " NULL"
		}
		if col.Default != nil {
			def += " DEFAULT "
			// For values like CURRENT_TIMESTAMP or NULL, no quoting is done.
			if *col.Default == "CURRENT_TIMESTAMP" || *col.Default == "NULL" {
				def += *col.Default
			} else {
				def += fmt.Sprintf("'%s'", *col.Default)
			}
		}
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		}
		if col.Unique && !col.PrimaryKey {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}
	builder.WriteString(strings.Join(defs, ",\n"))
	builder.WriteString("\n) ENGINE = InnoDB DEFAULT CHARSET = utf8mb4;")
	return builder.String()
}

func columnType(col database.ColumnDefinition) string {
	if col.Type != "" {
		return col.Type
	}
	switch col.Kind {
	case database.KindText:
		return "TEXT"
	case database.KindTimestamp:
		return "DATETIME(6)"
	case database.KindInteger:
		return "BIGINT"
	default:
		return "VARCHAR(255)"
	}
}

// getOrderClauseFromOrders returns an ORDER BY clause.
func getOrderClauseFromOrders(orders []database.Order) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, 0, len(orders))
	for _, order := range orders {
		direction := order.Direction
		if direction == "" {
			direction = database.OrderAsc
		}
		parts = append(parts, fmt.Sprintf("`%s` %s", order.Column, direction))
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func getLimitOffsetClauseFromPage(page *database.Page) string {
	if page == nil {
		return ""
	}
	return fmt.Sprintf(
		"LIMIT %d OFFSET %d",
		page.Limit,
		page.Offset,
	)
}

func whereClause(selectors []database.Selector) (string, []any) {
	if len(selectors) == 0 {
		return "", nil
	}
	columns := make([]string, 0, len(selectors))
	values := make([]any, 0, len(selectors))
	for _, selector := range selectors {
		columns = append(columns, fmt.Sprintf("`%s` = ?", selector.Column))
		values = append(values, selector.Value)
	}
	return "WHERE " + strings.Join(columns, " AND "), values
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = "`" + column + "`"
	}
	return strings.Join(quoted, ", ")
}

func createPlaceholders(count int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
