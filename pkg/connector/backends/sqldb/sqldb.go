// Package sqldb shapes database/sql results into response envelopes. The
// mysql and snowflake connectors share it; pgx-based connectors have their
// own result path.
package sqldb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
)

// rowsPrefixes are the statement keywords that produce a result set
var rowsPrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH"}

// ReturnsRows reports whether stmt is expected to produce a result set
func ReturnsRows(stmt string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(stmt))
	for _, prefix := range rowsPrefixes {
		if strings.HasPrefix(trimmed, prefix+" ") || trimmed == prefix {
			return true
		}
	}
	return false
}

// Run executes stmt against db, choosing the query or exec path by
// statement shape, and returns a response envelope
func Run(ctx context.Context, db *sql.DB, stmt string, args ...interface{}) *core.Response {
	if ReturnsRows(stmt) {
		return Query(ctx, db, stmt, args...)
	}
	return Exec(ctx, db, stmt, args...)
}

// Exec executes a statement without a result set
func Exec(ctx context.Context, db *sql.DB, stmt string, args ...interface{}) *core.Response {
	result, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		// Some backends cannot report affected rows; the statement
		// itself still succeeded
		affected = 0
	}
	return core.NewOKResponse(affected)
}

// Query executes a statement and collects its result set
func Query(ctx context.Context, db *sql.DB, stmt string, args ...interface{}) *core.Response {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	defer rows.Close()

	return Collect(rows)
}

// Collect drains rows into a table response
func Collect(rows *sql.Rows) *core.Response {
	types, err := rows.ColumnTypes()
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	columns := make([]core.Column, len(types))
	for i, ct := range types {
		columns[i] = core.Column{
			Name: ct.Name(),
			Type: strings.ToLower(ct.DatabaseTypeName()),
		}
	}

	var out []core.Row
	holders := make([]interface{}, len(types))
	for rows.Next() {
		values := make([]interface{}, len(types))
		for i := range values {
			holders[i] = &values[i]
		}
		if err := rows.Scan(holders...); err != nil {
			return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
		}

		row := make(core.Row, len(types))
		for i, ct := range types {
			row[ct.Name()] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	return core.NewTableResponse(out, columns)
}

// normalize converts driver byte slices to strings so rows hold displayable
// values regardless of driver quirks
func normalize(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
