// Package mysql implements the MySQL connector on database/sql with the
// go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql" // database/sql driver
	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/connector/backends/sqldb"
	"github.com/hftex/mindsdb/pkg/connector/base"
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/query"
)

// Connector implements core.Connector for MySQL
type Connector struct {
	*base.Connector

	renderer *query.Renderer

	// mu guards db so a health probe never races a concurrent
	// disconnect or reconnect
	mu sync.RWMutex
	db *sql.DB

	// openDB is swappable so tests can plug a sqlmock database
	openDB func(dsn string) (*sql.DB, error)
}

// ArgSpec declares the connection arguments the mysql connector accepts
func ArgSpec() *core.ArgSpec {
	return core.NewArgSpec().
		Add(core.Arg{Name: "host", Type: core.ArgTypeString, Label: "Host", Description: "Server hostname or IP address", Required: true}).
		Add(core.Arg{Name: "port", Type: core.ArgTypeInt, Label: "Port", Description: "Server port, 3306 by default"}).
		Add(core.Arg{Name: "user", Type: core.ArgTypeString, Label: "User", Description: "Authentication user", Required: true}).
		Add(core.Arg{Name: "password", Type: core.ArgTypePassword, Label: "Password", Description: "Authentication password"}).
		Add(core.Arg{Name: "database", Type: core.ArgTypeString, Label: "Database", Description: "Database to connect to", Required: true})
}

// New creates a mysql connector instance. No I/O happens until Connect.
func New(name string, data map[string]interface{}) (core.Connector, error) {
	return &Connector{
		Connector: base.New(name, ArgSpec(), data),
		renderer:  query.NewRenderer(query.MySQL),
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}, nil
}

func (c *Connector) dsn() string {
	password, _ := c.StringArg("password")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.StringArgDefault("user", ""),
		password,
		c.StringArgDefault("host", "localhost"),
		c.IntArgDefault("port", 3306),
		c.StringArgDefault("database", ""))
}

// handle returns the current driver handle under the read lock
func (c *Connector) handle() *sql.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// swapHandle installs db and returns the handle it replaced
func (c *Connector) swapHandle(db *sql.DB) *sql.DB {
	c.mu.Lock()
	old := c.db
	c.db = db
	c.mu.Unlock()
	return old
}

// Connect opens the driver handle and verifies it with a ping
func (c *Connector) Connect(ctx context.Context) *core.Status {
	if c.IsConnected() && c.handle() != nil {
		return c.CheckConnection(ctx)
	}

	db, err := c.openDB(c.dsn())
	if err != nil {
		c.SetConnected(false)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "cannot open mysql connection"))
	}

	// a broken handle may survive MarkBroken; close it before taking over
	if old := c.swapHandle(db); old != nil {
		_ = old.Close()
	}
	c.SetConnected(true)
	c.Logger().Info("mysql connection opened",
		zap.String("host", c.StringArgDefault("host", "localhost")),
		zap.String("database", c.StringArgDefault("database", "")))

	status := c.CheckConnection(ctx)
	if !status.OK() {
		if failed := c.swapHandle(nil); failed != nil {
			_ = failed.Close()
		}
		c.SetConnected(false)
	}
	return status
}

// Disconnect closes the driver handle. Safe to call repeatedly.
func (c *Connector) Disconnect(ctx context.Context) error {
	old := c.swapHandle(nil)
	c.SetConnected(false)
	if old == nil {
		return nil
	}
	if err := old.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "error closing mysql connection")
	}
	return nil
}

// CheckConnection pings the backend without reconnecting
func (c *Connector) CheckConnection(ctx context.Context) *core.Status {
	db := c.handle()
	if db == nil {
		c.Metrics().RecordHealthCheck(false)
		return core.NewStatusError(errors.ErrorTypeConnection, "mysql connector is not connected", nil)
	}

	if err := db.PingContext(ctx); err != nil {
		c.Metrics().RecordHealthCheck(false)
		c.MarkBroken(err)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "mysql ping failed"))
	}

	c.Metrics().RecordHealthCheck(true)
	c.SetConnected(true)
	return core.NewStatusOK()
}

// NativeQuery executes a SQL statement verbatim
func (c *Connector) NativeQuery(ctx context.Context, statement string) *core.Response {
	return c.run(ctx, "native_query", statement)
}

// Query translates a structured statement to mysql SQL and executes it
func (c *Connector) Query(ctx context.Context, stmt query.Statement) *core.Response {
	stmtSQL, args, err := c.renderer.Render(stmt)
	if err != nil {
		return core.ErrorResponse(err)
	}
	return c.run(ctx, "query", stmtSQL, args...)
}

// Tables lists the tables and views of the configured database
func (c *Connector) Tables(ctx context.Context) *core.Response {
	const stmt = `
		SELECT TABLE_NAME, TABLE_SCHEMA, TABLE_TYPE
		FROM information_schema.tables
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME`
	return c.run(ctx, "get_tables", stmt, c.StringArgDefault("database", ""))
}

// Columns describes the columns of one table. Unknown tables produce a
// schema_lookup failure rather than an empty result.
func (c *Connector) Columns(ctx context.Context, table string) *core.Response {
	db := c.handle()
	if db == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mysql connector is not connected", nil)
	}

	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		c.StringArgDefault("database", ""), table).Scan(&count)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, "table lookup failed: "+err.Error(), err)
	}
	if count == 0 {
		return core.NewErrorResponse(errors.ErrorTypeSchemaLookup, "table "+table+" does not exist", nil)
	}

	const stmt = `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY
		FROM information_schema.columns
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
	return c.run(ctx, "get_columns", stmt, c.StringArgDefault("database", ""), table)
}

func (c *Connector) run(ctx context.Context, operation, stmt string, args ...interface{}) *core.Response {
	db := c.handle()
	if db == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mysql connector is not connected", nil)
	}

	timer := c.Metrics().NewTimer(operation)
	resp := sqldb.Run(ctx, db, stmt, args...)
	if resp.OK() {
		timer.Stop(nil)
	} else {
		timer.Stop(errors.New(resp.ErrorKind(), resp.ErrorMessage()))
	}
	return resp
}
