package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pakkasys/fluidquery/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(
		context.Background(), database.NewDefaultSQLiteConfig(":memory:"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE parent (id TEXT PRIMARY KEY, name TEXT UNIQUE)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE child (parent_id TEXT REFERENCES parent(id))`)
	require.NoError(t, err)
	return db
}

func TestCheck_UniqueViolation(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO parent VALUES ('1', 'a')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parent VALUES ('2', 'a')`)
	require.Error(t, err)

	assert.ErrorIs(t, (&ErrorChecker{}).Check(err), database.DuplicateEntryError)
}

func TestCheck_PrimaryKeyViolation(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO parent VALUES ('1', 'a')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parent VALUES ('1', 'b')`)
	require.Error(t, err)

	assert.ErrorIs(t, (&ErrorChecker{}).Check(err), database.DuplicateEntryError)
}

func TestCheck_ForeignKeyViolation(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO child VALUES ('missing')`)
	require.Error(t, err)

	assert.ErrorIs(
		t, (&ErrorChecker{}).Check(err), database.ForeignConstraintError,
	)
}

func TestCheck_NoRows(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM parent WHERE id = '1'`).Scan(&name)

	assert.ErrorIs(t, (&ErrorChecker{}).Check(err), database.NoRowsError)
}

func TestCheck_PassThrough(t *testing.T) {
	other := errors.New("other")

	assert.Equal(t, other, (&ErrorChecker{}).Check(other))
	assert.NoError(t, (&ErrorChecker{}).Check(nil))
}
