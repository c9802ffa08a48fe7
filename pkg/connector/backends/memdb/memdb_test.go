package memdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/query"
)

func usersTable() *Table {
	return &Table{
		Name: "users",
		Columns: []core.Column{
			{Name: "id", Type: "int"},
			{Name: "name", Type: "string"},
			{Name: "age", Type: "int"},
			{Name: "email", Type: "string"},
		},
		Rows: []core.Row{
			{"id": 1, "name": "ana", "age": 34, "email": "ana@example.com"},
			{"id": 2, "name": "bob", "age": 28, "email": nil},
			{"id": 3, "name": "carol", "age": 41, "email": "carol@example.com"},
		},
	}
}

func connectedFixture(t *testing.T) *Connector {
	t.Helper()
	conn, err := New("mem_test", map[string]interface{}{})
	require.NoError(t, err)

	mem := conn.(*Connector)
	mem.Seed(usersTable(), &Table{Name: "empty", Columns: []core.Column{{Name: "id"}}})

	status := mem.Connect(context.Background())
	require.True(t, status.OK())
	return mem
}

func TestLifecycle(t *testing.T) {
	conn, err := New("mem_test", map[string]interface{}{})
	require.NoError(t, err)
	mem := conn.(*Connector)
	ctx := context.Background()

	// disconnected instances fail health checks with a connection error
	status := mem.CheckConnection(ctx)
	require.False(t, status.OK())
	assert.Equal(t, errors.ErrorTypeConnection, status.ErrorKind())

	// connect verifies with an immediate probe
	require.True(t, mem.Connect(ctx).OK())
	assert.True(t, mem.CheckConnection(ctx).OK())

	// connect on a live instance is an idempotent probe
	require.True(t, mem.Connect(ctx).OK())

	// disconnect is idempotent
	require.NoError(t, mem.Disconnect(ctx))
	require.NoError(t, mem.Disconnect(ctx))
	assert.False(t, mem.CheckConnection(ctx).OK())
}

func TestQueryRequiresConnection(t *testing.T) {
	conn, err := New("mem_test", map[string]interface{}{})
	require.NoError(t, err)
	mem := conn.(*Connector)
	ctx := context.Background()

	resp := mem.Query(ctx, &query.Select{Table: "users"})
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeConnection, resp.ErrorKind())

	assert.False(t, mem.Tables(ctx).OK())
	assert.False(t, mem.Columns(ctx, "users").OK())
}

func TestConnectLoadsFixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	doc := `{"tables": [{"name": "pets", "columns": [{"name": "id", "type": "int"}], "rows": [{"id": 1}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	conn, err := New("mem_test", map[string]interface{}{"fixture": path})
	require.NoError(t, err)
	ctx := context.Background()

	require.True(t, conn.Connect(ctx).OK())

	resp := conn.Query(ctx, &query.Select{Table: "pets"})
	require.True(t, resp.OK())
	assert.Len(t, resp.Rows(), 1)
}

func TestConnectBadFixture(t *testing.T) {
	conn, err := New("mem_test", map[string]interface{}{"fixture": "/nonexistent/fixture.json"})
	require.NoError(t, err)

	status := conn.Connect(context.Background())
	require.False(t, status.OK())
	assert.Equal(t, errors.ErrorTypeConnection, status.ErrorKind())
	assert.False(t, conn.CheckConnection(context.Background()).OK())
}

func TestTables(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Tables(context.Background())
	require.True(t, resp.OK())
	require.Len(t, resp.Rows(), 2)
	assert.Equal(t, "users", resp.Rows()[0][core.ColumnTableName])
	assert.Equal(t, "BASE TABLE", resp.Rows()[0][core.ColumnTableType])
	assert.Equal(t, "empty", resp.Rows()[1][core.ColumnTableName])
}

func TestColumns(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Columns(context.Background(), "users")
	require.True(t, resp.OK())
	require.Len(t, resp.Rows(), 4)
	assert.Equal(t, "id", resp.Rows()[0][core.ColumnColumnName])
	assert.Equal(t, "int", resp.Rows()[0][core.ColumnDataType])

	// every listed table answers a column listing
	tables := mem.Tables(context.Background())
	for _, row := range tables.Rows() {
		name := row[core.ColumnTableName].(string)
		assert.True(t, mem.Columns(context.Background(), name).OK())
	}
}

func TestColumnsUnknownTable(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Columns(context.Background(), "ghosts")
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeSchemaLookup, resp.ErrorKind())
}

func TestSelectAll(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Select{Table: "users"})
	require.True(t, resp.OK())
	assert.Len(t, resp.Rows(), 3)
	assert.Len(t, resp.Columns(), 4)
}

func TestSelectProjectionAndFilter(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Select{
		Table:   "users",
		Columns: []string{"name"},
		Where:   query.Gt("age", 30),
	})
	require.True(t, resp.OK())
	require.Len(t, resp.Rows(), 2)
	require.Len(t, resp.Columns(), 1)
	assert.Equal(t, "name", resp.Columns()[0].Name)

	// projected rows carry only selected columns
	_, hasAge := resp.Rows()[0]["age"]
	assert.False(t, hasAge)
}

func TestSelectOrderLimitOffset(t *testing.T) {
	mem := connectedFixture(t)
	limit := int64(1)
	offset := int64(1)

	resp := mem.Query(context.Background(), &query.Select{
		Table:   "users",
		OrderBy: []query.Order{{Column: "age", Desc: true}},
		Limit:   &limit,
		Offset:  &offset,
	})
	require.True(t, resp.OK())
	require.Len(t, resp.Rows(), 1)
	assert.Equal(t, "ana", resp.Rows()[0]["name"])
}

func TestSelectConditionTree(t *testing.T) {
	mem := connectedFixture(t)

	tests := []struct {
		name  string
		where *query.Condition
		want  int
	}{
		{"eq", query.Eq("name", "ana"), 1},
		{"ne", query.Ne("name", "ana"), 2},
		{"lte", query.Lte("age", 34), 2},
		{"like", query.Like("name", "%a%"), 2},
		{"like underscore", query.Like("name", "b_b"), 1},
		{"in", query.In("id", 1, 3), 2},
		{"is null", query.IsNull("email"), 1},
		{"is not null", query.IsNotNull("email"), 2},
		{"and", query.AndOf(query.Gt("age", 30), query.IsNotNull("email")), 2},
		{"or", query.OrOf(query.Eq("name", "ana"), query.Eq("name", "bob")), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := mem.Query(context.Background(), &query.Select{Table: "users", Where: tt.where})
			require.True(t, resp.OK(), resp.ErrorMessage())
			assert.Len(t, resp.Rows(), tt.want)
		})
	}
}

func TestSelectUnknownColumn(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Select{Table: "users", Columns: []string{"ssn"}})
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeSchemaLookup, resp.ErrorKind())
}

func TestSelectGroupByUnsupported(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Select{Table: "users", GroupBy: []string{"age"}})
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeQueryTranslation, resp.ErrorKind())
}

func TestInsert(t *testing.T) {
	mem := connectedFixture(t)
	ctx := context.Background()

	resp := mem.Query(ctx, &query.Insert{
		Table:   "users",
		Columns: []string{"id", "name", "age"},
		Rows:    [][]interface{}{{4, "dave", 19}, {5, "eve", 52}},
	})
	require.True(t, resp.OK())
	assert.Equal(t, core.ResponseTypeOK, resp.Type())
	assert.Equal(t, int64(2), resp.AffectedRows())

	all := mem.Query(ctx, &query.Select{Table: "users"})
	assert.Len(t, all.Rows(), 5)
}

func TestInsertUnknownColumn(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Insert{
		Table:   "users",
		Columns: []string{"ssn"},
		Rows:    [][]interface{}{{"123"}},
	})
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeSchemaLookup, resp.ErrorKind())
}

func TestInsertArityMismatch(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.Query(context.Background(), &query.Insert{
		Table:   "users",
		Columns: []string{"id", "name"},
		Rows:    [][]interface{}{{1}},
	})
	require.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeQueryTranslation, resp.ErrorKind())
}

func TestUpdate(t *testing.T) {
	mem := connectedFixture(t)
	ctx := context.Background()

	resp := mem.Query(ctx, &query.Update{
		Table: "users",
		Set:   []query.Assignment{{Column: "age", Value: 30}},
		Where: query.Lt("age", 35),
	})
	require.True(t, resp.OK())
	assert.Equal(t, int64(2), resp.AffectedRows())

	after := mem.Query(ctx, &query.Select{Table: "users", Where: query.Eq("age", 30)})
	assert.Len(t, after.Rows(), 2)
}

func TestDelete(t *testing.T) {
	mem := connectedFixture(t)
	ctx := context.Background()

	resp := mem.Query(ctx, &query.Delete{Table: "users", Where: query.Eq("name", "bob")})
	require.True(t, resp.OK())
	assert.Equal(t, int64(1), resp.AffectedRows())

	remaining := mem.Query(ctx, &query.Select{Table: "users"})
	assert.Len(t, remaining.Rows(), 2)
}

func TestStatementAgainstUnknownTable(t *testing.T) {
	mem := connectedFixture(t)
	ctx := context.Background()

	stmts := []query.Statement{
		&query.Select{Table: "ghosts"},
		&query.Insert{Table: "ghosts", Columns: []string{"id"}, Rows: [][]interface{}{{1}}},
		&query.Update{Table: "ghosts", Set: []query.Assignment{{Column: "id", Value: 1}}},
		&query.Delete{Table: "ghosts"},
	}

	for _, stmt := range stmts {
		resp := mem.Query(ctx, stmt)
		require.False(t, resp.OK())
		assert.Equal(t, errors.ErrorTypeSchemaLookup, resp.ErrorKind())
	}
}

func TestNativeQuery(t *testing.T) {
	mem := connectedFixture(t)

	resp := mem.NativeQuery(context.Background(),
		`{"select": {"table": "users", "where": {"column": "name", "op": "=", "value": "ana"}}}`)
	require.True(t, resp.OK())
	assert.Len(t, resp.Rows(), 1)

	bad := mem.NativeQuery(context.Background(), `{"nope": true}`)
	require.False(t, bad.OK())
	assert.Equal(t, errors.ErrorTypeQueryTranslation, bad.ErrorKind())
}

func TestDescribeRedaction(t *testing.T) {
	conn, err := New("mem_test", map[string]interface{}{"fixture": "/tmp/fixture.json"})
	require.NoError(t, err)

	rendered := conn.Describe(false)
	require.Len(t, rendered, 1)
	assert.Equal(t, "/tmp/fixture.json", rendered[0].Value)
}
