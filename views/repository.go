package views

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pakkasys/fluidquery/database"
)

// DefaultTable is the table of the SQL repository.
const DefaultTable = "views"

// Repository persists views.
type Repository interface {
	Insert(ctx context.Context, view *View) error
	GetByName(ctx context.Context, name string) (*View, error)
	List(ctx context.Context, opts ListOptions) ([]View, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, name string) (int64, error)
}

var columns = []string{"id", "name", "path", "query", "fragment", "created_at"}

func columnDefinitions() []database.ColumnDefinition {
	return []database.ColumnDefinition{
		{Name: "id", Kind: database.KindString, NotNull: true, PrimaryKey: true},
		{Name: "name", Kind: database.KindString, NotNull: true, Unique: true},
		{Name: "path", Kind: database.KindText, NotNull: true},
		{Name: "query", Kind: database.KindText, NotNull: true},
		{Name: "fragment", Kind: database.KindText, NotNull: true},
		{Name: "created_at", Kind: database.KindTimestamp, NotNull: true},
	}
}

// SQLRepository stores views in a SQL table. Driver errors are translated
// by the dialect's error checker.
type SQLRepository struct {
	db      *sql.DB
	dialect database.Dialect
	table   string
}

// NewSQLRepository returns a repository using the default table.
func NewSQLRepository(db *sql.DB, dialect database.Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		table:   DefaultTable,
	}
}

// Migrate creates the table if it does not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	query := r.dialect.CreateTableQuery(r.table, true, columnDefinitions())
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// Insert stores a new view. A view with the same name or ID yields
// database.DuplicateEntryError.
func (r *SQLRepository) Insert(ctx context.Context, view *View) error {
	path, err := json.Marshal(view.Path)
	if err != nil {
		return err
	}
	query, values := r.dialect.Insert(r.table, columns, []any{
		view.ID,
		view.Name,
		string(path),
		view.Query,
		view.Fragment,
		view.CreatedAt,
	})
	if _, err := r.db.ExecContext(ctx, query, values...); err != nil {
		return r.dialect.Check(err)
	}
	return nil
}

// GetByName returns the view with the given name, or
// database.NoRowsError.
func (r *SQLRepository) GetByName(
	ctx context.Context, name string,
) (*View, error) {
	query, values := r.dialect.Get(r.table, &database.GetOptions{
		Columns:   columns,
		Selectors: []database.Selector{{Column: "name", Value: name}},
	})
	view, err := scanView(r.db.QueryRowContext(ctx, query, values...))
	if err != nil {
		return nil, r.dialect.Check(err)
	}
	return view, nil
}

// List returns a page of views ordered by name.
func (r *SQLRepository) List(
	ctx context.Context, opts ListOptions,
) ([]View, error) {
	opts = opts.withDefaults()
	query, values := r.dialect.Get(r.table, &database.GetOptions{
		Columns: columns,
		Orders:  []database.Order{{Column: "name", Direction: database.OrderAsc}},
		Page:    &database.Page{Offset: opts.Offset, Limit: opts.Limit},
	})
	rows, err := r.db.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, r.dialect.Check(err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dialect.Check(err)
	}
	return views, nil
}

// Count returns the number of stored views.
func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	query, values := r.dialect.Count(r.table, nil)
	var count int
	if err := r.db.QueryRowContext(ctx, query, values...).Scan(&count); err != nil {
		return 0, r.dialect.Check(err)
	}
	return count, nil
}

// Delete removes the view with the given name and returns the number of
// deleted views.
func (r *SQLRepository) Delete(ctx context.Context, name string) (int64, error) {
	query, values := r.dialect.Delete(
		r.table, []database.Selector{{Column: "name", Value: name}},
	)
	result, err := r.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, r.dialect.Check(err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(row scanner) (*View, error) {
	var view View
	var path string
	err := row.Scan(
		&view.ID,
		&view.Name,
		&path,
		&view.Query,
		&view.Fragment,
		&view.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(path), &view.Path); err != nil {
		return nil, fmt.Errorf("decode path of view %s: %w", view.Name, err)
	}
	view.CreatedAt = view.CreatedAt.UTC()
	return &view, nil
}
