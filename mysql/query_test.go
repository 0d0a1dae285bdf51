package mysql

import (
	"testing"

	"github.com/pakkasys/fluidquery/database"
	"github.com/stretchr/testify/assert"
)

func TestInsert(t *testing.T) {
	q := &Query{}

	query, values := q.Insert(
		"views", []string{"id", "name"}, []any{"1", "home"},
	)

	assert.Equal(t, "INSERT INTO `views` (`id`, `name`) VALUES (?, ?)", query)
	assert.Equal(t, []any{"1", "home"}, values)
}

func TestGet_AllOptions(t *testing.T) {
	q := &Query{}

	query, values := q.Get("views", &database.GetOptions{
		Columns:   []string{"id", "name"},
		Selectors: []database.Selector{{Column: "name", Value: "home"}},
		Orders: []database.Order{
			{Column: "created_at", Direction: database.OrderDesc},
			{Column: "name"},
		},
		Page: &database.Page{Offset: 20, Limit: 10},
	})

	assert.Equal(
		t,
		"SELECT `id`, `name` FROM `views` WHERE `name` = ?"+
			" ORDER BY `created_at` DESC, `name` ASC LIMIT 10 OFFSET 20",
		query,
	)
	assert.Equal(t, []any{"home"}, values)
}

func TestGet_NoOptions(t *testing.T) {
	q := &Query{}

	query, values := q.Get("views", &database.GetOptions{})

	assert.Equal(t, "SELECT * FROM `views`", query)
	assert.Nil(t, values)
}

func TestCount(t *testing.T) {
	q := &Query{}

	query, values := q.Count("views", nil)
	assert.Equal(t, "SELECT COUNT(*) FROM `views`", query)
	assert.Nil(t, values)

	query, values = q.Count(
		"views", []database.Selector{{Column: "name", Value: "a"}},
	)
	assert.Equal(t, "SELECT COUNT(*) FROM `views` WHERE `name` = ?", query)
	assert.Equal(t, []any{"a"}, values)
}

func TestDelete(t *testing.T) {
	q := &Query{}

	query, values := q.Delete("views", []database.Selector{
		{Column: "name", Value: "home"},
		{Column: "id", Value: "1"},
	})

	assert.Equal(
		t, "DELETE FROM `views` WHERE `name` = ? AND `id` = ?", query,
	)
	assert.Equal(t, []any{"home", "1"}, values)
}

func TestCreateTableQuery(t *testing.T) {
	q := &Query{}
	now := "CURRENT_TIMESTAMP"

	query := q.CreateTableQuery("views", true, []database.ColumnDefinition{
		{Name: "id", Kind: database.KindString, NotNull: true, PrimaryKey: true},
		{Name: "name", Kind: database.KindString, NotNull: true, Unique: true},
		{Name: "query", Kind: database.KindText},
		{Name: "created_at", Kind: database.KindTimestamp, NotNull: true, Default: &now},
		{Name: "hits", Type: "INT UNSIGNED", NotNull: true},
	})

	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `views` (\n"+
		"  `id` VARCHAR(255) NOT NULL PRIMARY KEY,\n"+
		"  `name` VARCHAR(255) NOT NULL UNIQUE,\n"+
		"  `query` TEXT NULL,\n"+
		"  `created_at` DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP,\n"+
		"  `hits` INT UNSIGNED NOT NULL\n"+
		") ENGINE = InnoDB DEFAULT CHARSET = utf8mb4;", query)
}

func TestDialect(t *testing.T) {
	var dialect database.Dialect = NewDialect()

	assert.Equal(t, database.MySQL, dialect.Driver())
}
