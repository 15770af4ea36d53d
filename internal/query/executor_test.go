package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows is the minimal pgx.Rows needed to drive the executor's scan loop.
type fakeRows struct {
	data [][]any
	cur  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	r.cur++
	return r.cur <= len(r.data)
}
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.cur-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		default:
			return fmt.Errorf("fakeRows: unsupported dest %T", d)
		}
	}
	return nil
}
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeRow struct {
	total int64
}

func (r fakeRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.total
	return nil
}

// fakeDB records every statement the executor issues.
type fakeDB struct {
	rows    [][]any
	total   int64
	queries []string
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	return fakeRow{total: f.total}
}

type fakeCache struct {
	store  map[string][]byte
	getErr error
	setErr error
	gets   int
	sets   int
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.store[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.store[key] = value
	return nil
}

type testRec struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func scanTestRec(rows pgx.Rows) (testRec, error) {
	var r testRec
	err := rows.Scan(&r.ID, &r.Name)
	return r, err
}

var testDef = Definition{
	Name:       "widgets",
	Table:      "widgets",
	Alias:      "w",
	Columns:    []string{"w.id", "w.name"},
	IDColumn:   "id",
	Sortable:   NewAllowlist("id", "name", "created_at"),
	Filterable: NewAllowlist("name", "created_at"),
	BaseWhere:  "w.owner_id = @owner",
}

func listQuery(mods ...func(*ListQuery)) *ListQuery {
	q := &ListQuery{Page: 1, Limit: 10, SortOrder: Desc}
	for _, m := range mods {
		m(q)
	}
	return q
}

func TestRunHappyPath(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(1), "alpha"}, {int64(2), "beta"}}, total: 12}

	q := listQuery(func(q *ListQuery) {
		q.Page = 2
		q.Limit = 2
		q.SortBy = "name"
		q.SortOrder = Asc
		q.Filters = []Filter{{Field: "name", Op: OpLike, Value: "a"}}
	})

	res, err := Run(context.Background(), db, testDef, q, pgx.NamedArgs{"owner": int64(7)}, scanTestRec, Options{})
	require.NoError(t, err)

	require.Len(t, db.queries, 2)
	dataSQL, countSQL := db.queries[0], db.queries[1]
	assert.Contains(t, dataSQL, "SELECT w.id, w.name FROM widgets w")
	assert.Contains(t, dataSQL, "w.owner_id = @owner AND")
	assert.Contains(t, dataSQL, "LIKE lower(@name_like_1)")
	assert.Contains(t, dataSQL, "ORDER BY w.name ASC")
	assert.Contains(t, dataSQL, "LIMIT @__limit OFFSET @__offset")
	assert.Contains(t, countSQL, "SELECT count(*) FROM widgets w")
	assert.NotContains(t, countSQL, "LIMIT")

	assert.Equal(t, []testRec{{ID: 1, Name: "alpha"}, {ID: 2, Name: "beta"}}, res.Data)
	assert.Equal(t, 2, res.Metadata.Page)
	assert.Equal(t, int64(12), res.Metadata.TotalCount)
	assert.Equal(t, int64(6), res.Metadata.TotalPages)
	assert.True(t, res.Metadata.HasNextPage)
	assert.True(t, res.Metadata.HasPreviousPage)
}

func TestRunRejectsBeforeStore(t *testing.T) {
	db := &fakeDB{}

	bad := []*ListQuery{
		listQuery(func(q *ListQuery) { q.SortBy = "password_hash" }),
		listQuery(func(q *ListQuery) { q.Filters = []Filter{{Field: "secret", Op: OpEq, Value: "x"}} }),
		listQuery(func(q *ListQuery) { q.Filters = []Filter{{Field: "name", Op: Operator("between"), Value: "x"}} }),
		listQuery(func(q *ListQuery) { q.Filters = []Filter{{Field: "name", Op: OpIn, Value: "not-a-list"}} }),
	}

	for _, q := range bad {
		_, err := Run(context.Background(), db, testDef, q, nil, scanTestRec, Options{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}
	// Zero store interaction across all rejected requests.
	assert.Empty(t, db.queries)
}

func TestRunCacheShortCircuit(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(1), "alpha"}}, total: 1}
	c := newFakeCache()
	opts := Options{Cache: c, TTL: time.Minute}

	q := listQuery(func(q *ListQuery) {
		q.Filters = []Filter{{Field: "name", Op: OpEq, Value: "alpha"}}
	})

	first, err := Run(context.Background(), db, testDef, q, pgx.NamedArgs{"owner": int64(7)}, scanTestRec, opts)
	require.NoError(t, err)
	require.Len(t, db.queries, 2)
	assert.Equal(t, 1, c.sets)

	second, err := Run(context.Background(), db, testDef, q, pgx.NamedArgs{"owner": int64(7)}, scanTestRec, opts)
	require.NoError(t, err)

	// Second identical request never touched the store.
	assert.Len(t, db.queries, 2)
	assert.Equal(t, first, second)
}

func TestRunCacheKeyVariesWithScope(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(1), "alpha"}}, total: 1}
	c := newFakeCache()
	opts := Options{Cache: c, TTL: time.Minute}

	q := listQuery()
	_, err := Run(context.Background(), db, testDef, q, pgx.NamedArgs{"owner": int64(7)}, scanTestRec, opts)
	require.NoError(t, err)
	_, err = Run(context.Background(), db, testDef, q, pgx.NamedArgs{"owner": int64(8)}, scanTestRec, opts)
	require.NoError(t, err)

	// Different owners never share pages: four store calls, two cache entries.
	assert.Len(t, db.queries, 4)
	assert.Len(t, c.store, 2)
}

func TestRunCacheFailuresDegradeToDirect(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(1), "alpha"}}, total: 1}
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")

	res, err := Run(context.Background(), db, testDef, listQuery(), nil, scanTestRec, Options{Cache: c, TTL: time.Minute})
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.Len(t, db.queries, 2)
}

func TestRunCacheUndecodableEntryIsAMiss(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(1), "alpha"}}, total: 1}
	c := newFakeCache()
	opts := Options{Cache: c, TTL: time.Minute}

	// Prime, then corrupt the stored entry.
	_, err := Run(context.Background(), db, testDef, listQuery(), nil, scanTestRec, opts)
	require.NoError(t, err)
	for k := range c.store {
		c.store[k] = []byte("{not json")
	}

	res, err := Run(context.Background(), db, testDef, listQuery(), nil, scanTestRec, opts)
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.Len(t, db.queries, 4)
}

func TestRunIdempotent(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(3), "gamma"}, {int64(2), "beta"}}, total: 2}
	q := listQuery()

	first, err := Run(context.Background(), db, testDef, q, nil, scanTestRec, Options{})
	require.NoError(t, err)
	second, err := Run(context.Background(), db, testDef, q, nil, scanTestRec, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunDefaultSort(t *testing.T) {
	db := &fakeDB{total: 0}
	_, err := Run(context.Background(), db, testDef, listQuery(), nil, scanTestRec, Options{})
	require.NoError(t, err)
	assert.Contains(t, db.queries[0], "ORDER BY w.id DESC")
}

func TestRunEmptyResultKeepsDataNonNil(t *testing.T) {
	db := &fakeDB{total: 0}
	res, err := Run(context.Background(), db, testDef, listQuery(), nil, scanTestRec, Options{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(0), res.Metadata.TotalPages)
}
