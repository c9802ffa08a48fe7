// Package postgres implements the PostgreSQL connector on top of pgx
// connection pools.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/connector/base"
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/query"
)

// Connector implements core.Connector for PostgreSQL
type Connector struct {
	*base.Connector

	renderer *query.Renderer

	// mu guards pool so a health probe never races a concurrent
	// disconnect or reconnect
	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// ArgSpec declares the connection arguments the postgres connector accepts
func ArgSpec() *core.ArgSpec {
	return core.NewArgSpec().
		Add(core.Arg{Name: "host", Type: core.ArgTypeString, Label: "Host", Description: "Server hostname or IP address", Required: true}).
		Add(core.Arg{Name: "port", Type: core.ArgTypeInt, Label: "Port", Description: "Server port, 5432 by default"}).
		Add(core.Arg{Name: "user", Type: core.ArgTypeString, Label: "User", Description: "Authentication user", Required: true}).
		Add(core.Arg{Name: "password", Type: core.ArgTypePassword, Label: "Password", Description: "Authentication password"}).
		Add(core.Arg{Name: "database", Type: core.ArgTypeString, Label: "Database", Description: "Database to connect to", Required: true}).
		Add(core.Arg{Name: "schema", Type: core.ArgTypeString, Label: "Schema", Description: "Schema used for unqualified names, public by default"}).
		Add(core.Arg{Name: "sslmode", Type: core.ArgTypeString, Label: "SSL mode", Description: "disable, require, verify-ca or verify-full"})
}

// New creates a postgres connector instance. No I/O happens until Connect.
func New(name string, data map[string]interface{}) (core.Connector, error) {
	return &Connector{
		Connector: base.New(name, ArgSpec(), data),
		renderer:  query.NewRenderer(query.Postgres),
	}, nil
}

func (c *Connector) dsn() string {
	parts := []string{
		"host=" + c.StringArgDefault("host", "localhost"),
		fmt.Sprintf("port=%d", c.IntArgDefault("port", 5432)),
		"user=" + c.StringArgDefault("user", ""),
		"dbname=" + c.StringArgDefault("database", ""),
	}
	if password, ok := c.StringArg("password"); ok {
		parts = append(parts, "password="+password)
	}
	if sslmode, ok := c.StringArg("sslmode"); ok {
		parts = append(parts, "sslmode="+sslmode)
	}
	return strings.Join(parts, " ")
}

// handle returns the current pool under the read lock
func (c *Connector) handle() *pgxpool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool
}

// swapHandle installs pool and returns the pool it replaced
func (c *Connector) swapHandle(pool *pgxpool.Pool) *pgxpool.Pool {
	c.mu.Lock()
	old := c.pool
	c.pool = pool
	c.mu.Unlock()
	return old
}

// Connect establishes the connection pool and verifies it with a ping
func (c *Connector) Connect(ctx context.Context) *core.Status {
	if c.IsConnected() && c.handle() != nil {
		return c.CheckConnection(ctx)
	}

	cfg, err := pgxpool.ParseConfig(c.dsn())
	if err != nil {
		c.SetConnected(false)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConfiguration, "invalid postgres connection parameters"))
	}
	if schema, ok := c.StringArg("schema"); ok {
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		c.SetConnected(false)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "cannot create postgres connection pool"))
	}

	// a broken pool may survive MarkBroken; close it before taking over
	if old := c.swapHandle(pool); old != nil {
		old.Close()
	}
	c.SetConnected(true)
	c.Logger().Info("postgres pool established",
		zap.String("host", c.StringArgDefault("host", "localhost")),
		zap.String("database", c.StringArgDefault("database", "")))

	status := c.CheckConnection(ctx)
	if !status.OK() {
		if failed := c.swapHandle(nil); failed != nil {
			failed.Close()
		}
		c.SetConnected(false)
	}
	return status
}

// Disconnect closes the connection pool. Safe to call repeatedly.
func (c *Connector) Disconnect(ctx context.Context) error {
	if old := c.swapHandle(nil); old != nil {
		old.Close()
	}
	c.SetConnected(false)
	return nil
}

// CheckConnection pings the backend without reconnecting
func (c *Connector) CheckConnection(ctx context.Context) *core.Status {
	pool := c.handle()
	if pool == nil {
		c.Metrics().RecordHealthCheck(false)
		return core.NewStatusError(errors.ErrorTypeConnection, "postgres connector is not connected", nil)
	}

	if err := pool.Ping(ctx); err != nil {
		c.Metrics().RecordHealthCheck(false)
		c.MarkBroken(err)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "postgres ping failed"))
	}

	c.Metrics().RecordHealthCheck(true)
	c.SetConnected(true)
	return core.NewStatusOK()
}

// NativeQuery executes a SQL statement verbatim
func (c *Connector) NativeQuery(ctx context.Context, statement string) *core.Response {
	return c.run(ctx, "native_query", statement)
}

// Query translates a structured statement to postgres SQL and executes it
func (c *Connector) Query(ctx context.Context, stmt query.Statement) *core.Response {
	sql, args, err := c.renderer.Render(stmt)
	if err != nil {
		return core.ErrorResponse(err)
	}
	return c.run(ctx, "query", sql, args...)
}

// Tables lists tables and views outside the system schemas
func (c *Connector) Tables(ctx context.Context) *core.Response {
	const sql = `
		SELECT table_schema AS "TABLE_SCHEMA", table_name AS "TABLE_NAME", table_type AS "TABLE_TYPE"
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name`
	return c.run(ctx, "get_tables", sql)
}

// Resolving an unqualified table against current_schema() keeps the lookup
// on the session search_path, so a same-named table in another schema never
// leaks into the listing.
const (
	tableExistsSQL = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_name = $1
			  AND table_schema = current_schema()
		)`
	columnsSQL = `
		SELECT column_name AS "COLUMN_NAME", data_type AS "DATA_TYPE", is_nullable AS "IS_NULLABLE"
		FROM information_schema.columns
		WHERE table_name = $1
		  AND table_schema = current_schema()
		ORDER BY ordinal_position`
)

// Columns describes the columns of one table. Unknown tables produce a
// schema_lookup failure rather than an empty result.
func (c *Connector) Columns(ctx context.Context, table string) *core.Response {
	pool := c.handle()
	if pool == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "postgres connector is not connected", nil)
	}

	var exists bool
	err := pool.QueryRow(ctx, tableExistsSQL, table).Scan(&exists)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, "table lookup failed: "+err.Error(), err)
	}
	if !exists {
		return core.NewErrorResponse(errors.ErrorTypeSchemaLookup, "table "+table+" does not exist", nil)
	}

	return c.run(ctx, "get_columns", columnsSQL, table)
}

// run executes SQL and shapes the outcome into a response envelope. A
// statement without a result set yields an OK envelope with its affected
// row count.
func (c *Connector) run(ctx context.Context, operation, sql string, args ...interface{}) *core.Response {
	pool := c.handle()
	if pool == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "postgres connector is not connected", nil)
	}

	timer := c.Metrics().NewTimer(operation)

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		timer.Stop(err)
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	if len(fields) == 0 {
		rows.Close()
		if err := rows.Err(); err != nil {
			timer.Stop(err)
			return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
		}
		timer.Stop(nil)
		return core.NewOKResponse(rows.CommandTag().RowsAffected())
	}

	columns := make([]core.Column, len(fields))
	for i, f := range fields {
		columns[i] = core.Column{Name: string(f.Name), Type: pgTypeName(f.DataTypeOID)}
	}

	var out []core.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			timer.Stop(err)
			return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
		}
		row := make(core.Row, len(fields))
		for i := range fields {
			row[string(fields[i].Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		timer.Stop(err)
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	timer.Stop(nil)
	return core.NewTableResponse(out, columns)
}

// pgTypeName maps the common postgres type OIDs to readable names. Unknown
// OIDs fall back to text.
func pgTypeName(oid uint32) string {
	switch oid {
	case 16:
		return "bool"
	case 17:
		return "bytea"
	case 20:
		return "int8"
	case 21:
		return "int2"
	case 23:
		return "int4"
	case 25:
		return "text"
	case 114:
		return "json"
	case 700:
		return "float4"
	case 701:
		return "float8"
	case 1043:
		return "varchar"
	case 1082:
		return "date"
	case 1114:
		return "timestamp"
	case 1184:
		return "timestamptz"
	case 1700:
		return "numeric"
	case 2950:
		return "uuid"
	case 3802:
		return "jsonb"
	default:
		return "text"
	}
}
