package views

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pakkasys/fluidquery/client"
	"github.com/pakkasys/fluidquery/database"
	"github.com/pakkasys/fluidquery/sqlite"
	"github.com/pakkasys/fluidquery/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)

type observation struct {
	operation string
	outcome   string
}

type recordingObserver struct {
	mu           sync.Mutex
	observations []observation
}

func (o *recordingObserver) ObserveOperation(operation string, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observations = append(o.observations, observation{operation, outcome})
}

func newTestRepository(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := database.Connect(
		context.Background(), database.NewDefaultSQLiteConfig(":memory:"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repository := NewSQLRepository(db, sqlite.NewDialect())
	require.NoError(t, repository.Migrate(context.Background()))
	return repository
}

func newTestService(t *testing.T) (*Service, *recordingObserver) {
	t.Helper()
	observer := &recordingObserver{}
	service := NewService(newTestRepository(t), observer)
	ids := 0
	service.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	service.now = func() time.Time { return fixedNow }
	return service, observer
}

func TestView_URL(t *testing.T) {
	view := &View{
		Path:     []string{"https://example.com/", "/reports/", "/daily"},
		Query:    "filter.owner=alice&filter.public",
		Fragment: "tab=%22summary%22",
	}

	assert.Equal(
		t,
		"https://example.com/reports/daily?filter.owner=alice&filter.public#tab=%22summary%22",
		view.URL(),
	)
	assert.Equal(
		t,
		map[string]any{"filter": map[string]any{"owner": "alice", "public": true}},
		view.QueryValue(),
	)
	assert.Equal(t, map[string]any{"tab": "summary"}, view.FragmentValue())
}

func TestView_URLWithoutQuery(t *testing.T) {
	view := &View{Path: []string{"/home"}}

	assert.Equal(t, "/home", view.URL())
}

func TestSQLRepository_InsertAndGet(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()
	view := &View{
		ID:        "1",
		Name:      "home",
		Path:      []string{"/", "home"},
		Query:     "a=1",
		Fragment:  "",
		CreatedAt: fixedNow.Truncate(time.Microsecond),
	}

	require.NoError(t, repository.Insert(ctx, view))

	got, err := repository.GetByName(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)
	assert.Equal(t, view.Path, got.Path)
	assert.Equal(t, view.Query, got.Query)
	assert.Equal(t, "", got.Fragment)
	assert.WithinDuration(t, view.CreatedAt, got.CreatedAt, 0)
}

func TestSQLRepository_GetMissing(t *testing.T) {
	repository := newTestRepository(t)

	_, err := repository.GetByName(context.Background(), "missing")

	assert.ErrorIs(t, err, database.NoRowsError)
}

func TestSQLRepository_DuplicateName(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repository.Insert(ctx, &View{ID: "1", Name: "home", Path: []string{"/"}}))

	err := repository.Insert(ctx, &View{ID: "2", Name: "home", Path: []string{"/"}})

	assert.ErrorIs(t, err, database.DuplicateEntryError)
}

func TestSQLRepository_ListCountDelete(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, repository.Insert(ctx, &View{
			ID:        "id-" + name,
			Name:      name,
			Path:      []string{"/" + name},
			CreatedAt: fixedNow,
		}))
	}

	page, err := repository.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].Name)
	assert.Equal(t, "b", page[1].Name)

	page, err = repository.List(ctx, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Name)

	count, err := repository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	deleted, err := repository.Delete(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repository.Delete(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	count, err = repository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLRepository_ListEmpty(t *testing.T) {
	repository := newTestRepository(t)

	page, err := repository.List(context.Background(), ListOptions{})

	require.NoError(t, err)
	assert.Equal(t, []View{}, page)
}

func TestSQLRepository_ClosedDatabase(t *testing.T) {
	db, err := sql.Open(database.SQLite3, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	repository := NewSQLRepository(db, sqlite.NewDialect())

	assert.Error(t, repository.Migrate(context.Background()))
	_, err = repository.Count(context.Background())
	assert.Error(t, err)
}

func TestService_Create(t *testing.T) {
	service, observer := newTestService(t)
	ctx := context.Background()

	view, err := service.Create(ctx, CreateInput{
		Name:     "report",
		Path:     client.Path{"/reports/", "/daily"},
		Query:    map[string]any{"range": map[string]any{"from": 1, "to": 2}, "raw": true},
		Fragment: map[string]any{"tab": "summary"},
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", view.ID)
	assert.Equal(t, "range.from=1&range.to=2&raw", view.Query)
	assert.Equal(t, "tab=summary", view.Fragment)
	assert.Equal(t, fixedNow.Truncate(time.Microsecond), view.CreatedAt)
	assert.Equal(t, "/reports/daily?range.from=1&range.to=2&raw#tab=summary", view.URL())

	url, err := service.Resolve(ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, view.URL(), url)

	assert.Equal(t, []observation{
		{OperationCreate, OutcomeOK},
		{OperationGet, OutcomeOK},
	}, observer.observations)
}

func TestService_CreateInvalid(t *testing.T) {
	service, observer := newTestService(t)

	_, err := service.Create(context.Background(), CreateInput{Name: "a/b"})

	assert.ErrorIs(t, err, validation.InvalidInputError)
	assert.Equal(t, []observation{{OperationCreate, OutcomeError}}, observer.observations)
}

func TestService_CreateDuplicate(t *testing.T) {
	service, _ := newTestService(t)
	input := CreateInput{Name: "home", Path: client.Path{"/"}}

	_, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	_, err = service.Create(context.Background(), input)

	assert.ErrorIs(t, err, database.DuplicateEntryError)
}

func TestService_ListAndDelete(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"one", "two"} {
		_, err := service.Create(ctx, CreateInput{Name: name, Path: client.Path{"/" + name}})
		require.NoError(t, err)
	}

	views, total, err := service.List(ctx, ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 1)
	assert.Equal(t, "two", views[0].Name)

	deleted, err := service.Delete(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = service.Get(ctx, "one")
	assert.ErrorIs(t, err, database.NoRowsError)
}

func TestService_ListInvalidOptions(t *testing.T) {
	service, _ := newTestService(t)

	_, _, err := service.List(context.Background(), ListOptions{Limit: MaxLimit + 1})

	assert.ErrorIs(t, err, validation.InvalidInputError)
}

func TestService_NilObserver(t *testing.T) {
	service := NewService(newTestRepository(t), nil)

	_, err := service.Create(context.Background(), CreateInput{Name: "x", Path: client.Path{"/"}})

	assert.NoError(t, err)
}
