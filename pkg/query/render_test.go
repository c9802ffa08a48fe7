package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hftex/mindsdb/pkg/errors"
)

func int64p(v int64) *int64 { return &v }

func TestRenderSelect(t *testing.T) {
	limit := int64p(10)
	offset := int64p(5)

	tests := []struct {
		name     string
		dialect  Dialect
		stmt     *Select
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "star over all rows",
			dialect: Postgres,
			stmt:    &Select{Table: "users"},
			wantSQL: `SELECT * FROM "users"`,
		},
		{
			name:     "projection with filter postgres",
			dialect:  Postgres,
			stmt:     &Select{Table: "users", Columns: []string{"id", "name"}, Where: Eq("active", true)},
			wantSQL:  `SELECT "id", "name" FROM "users" WHERE "active" = $1`,
			wantArgs: []interface{}{true},
		},
		{
			name:     "projection with filter mysql",
			dialect:  MySQL,
			stmt:     &Select{Table: "users", Columns: []string{"id"}, Where: Gt("age", 21)},
			wantSQL:  "SELECT `id` FROM `users` WHERE `age` > ?",
			wantArgs: []interface{}{21},
		},
		{
			name:    "qualified table",
			dialect: Postgres,
			stmt:    &Select{Table: "analytics.events"},
			wantSQL: `SELECT * FROM "analytics"."events"`,
		},
		{
			name:    "order limit offset",
			dialect: Postgres,
			stmt: &Select{
				Table:   "orders",
				OrderBy: []Order{{Column: "created_at", Desc: true}, {Column: "id"}},
				Limit:   limit,
				Offset:  offset,
			},
			wantSQL: `SELECT * FROM "orders" ORDER BY "created_at" DESC, "id" LIMIT 10 OFFSET 5`,
		},
		{
			name:     "group by",
			dialect:  Snowflake,
			stmt:     &Select{Table: "events", Columns: []string{"kind"}, GroupBy: []string{"kind"}, Where: Ne("kind", "noise")},
			wantSQL:  `SELECT "kind" FROM "events" WHERE "kind" != ? GROUP BY "kind"`,
			wantArgs: []interface{}{"noise"},
		},
		{
			name:    "nested boolean tree",
			dialect: Postgres,
			stmt: &Select{
				Table: "users",
				Where: AndOf(
					Eq("active", true),
					OrOf(Like("name", "a%"), In("id", 1, 2, 3)),
				),
			},
			wantSQL:  `SELECT * FROM "users" WHERE ("active" = $1 AND ("name" LIKE $2 OR "id" IN ($3, $4, $5)))`,
			wantArgs: []interface{}{true, "a%", 1, 2, 3},
		},
		{
			name:    "null checks request no placeholders",
			dialect: Postgres,
			stmt:    &Select{Table: "users", Where: AndOf(IsNull("deleted_at"), IsNotNull("email"))},
			wantSQL: `SELECT * FROM "users" WHERE ("deleted_at" IS NULL AND "email" IS NOT NULL)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := NewRenderer(tt.dialect).Render(tt.stmt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRenderInsert(t *testing.T) {
	stmt := &Insert{
		Table:   "users",
		Columns: []string{"id", "name"},
		Rows:    [][]interface{}{{1, "ana"}, {2, "bob"}},
	}

	sql, args, err := NewRenderer(Postgres).Render(stmt)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id", "name") VALUES ($1, $2), ($3, $4)`, sql)
	assert.Equal(t, []interface{}{1, "ana", 2, "bob"}, args)

	sql, _, err = NewRenderer(MySQL).Render(stmt)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`id`, `name`) VALUES (?, ?), (?, ?)", sql)
}

func TestRenderUpdate(t *testing.T) {
	stmt := &Update{
		Table: "users",
		Set:   []Assignment{{Column: "name", Value: "ana"}, {Column: "active", Value: false}},
		Where: Eq("id", 7),
	}

	sql, args, err := NewRenderer(Postgres).Render(stmt)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = $1, "active" = $2 WHERE "id" = $3`, sql)
	assert.Equal(t, []interface{}{"ana", false, 7}, args)
}

func TestRenderDelete(t *testing.T) {
	sql, args, err := NewRenderer(Postgres).Render(&Delete{Table: "users", Where: Lt("age", 18)})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "age" < $1`, sql)
	assert.Equal(t, []interface{}{18}, args)

	sql, args, err = NewRenderer(Postgres).Render(&Delete{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users"`, sql)
	assert.Empty(t, args)
}

func TestRenderQuotesEmbeddedQuote(t *testing.T) {
	sql, _, err := NewRenderer(Postgres).Render(&Select{Table: `we"ird`})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "we""ird"`, sql)
}

func TestRenderTranslationErrors(t *testing.T) {
	tests := []struct {
		name string
		stmt Statement
	}{
		{"nil statement", nil},
		{"select without table", &Select{}},
		{"insert without columns", &Insert{Table: "t", Rows: [][]interface{}{{1}}}},
		{"insert without rows", &Insert{Table: "t", Columns: []string{"id"}}},
		{"insert arity mismatch", &Insert{Table: "t", Columns: []string{"id"}, Rows: [][]interface{}{{1, 2}}}},
		{"update without assignments", &Update{Table: "t"}},
		{"delete without table", &Delete{}},
		{"empty IN list", &Select{Table: "t", Where: &Condition{Column: "id", Op: OpIn, Value: []interface{}{}}}},
		{"leaf without column", &Select{Table: "t", Where: &Condition{Op: OpEq, Value: 1}}},
		{"unknown operator", &Select{Table: "t", Where: &Condition{Column: "id", Op: Op("BETWEEN"), Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewRenderer(Postgres).Render(tt.stmt)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeQueryTranslation))
		})
	}
}
