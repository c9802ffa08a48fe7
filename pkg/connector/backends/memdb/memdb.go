// Package memdb implements an in-memory connector. It backs demo setups
// and serves as the reference implementation of the connector contract:
// every lifecycle and query semantics the contract promises is observable
// here without a live backend.
package memdb

import (
	"context"
	"os"
	"sync"

	"github.com/hftex/mindsdb/pkg/connector/base"
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/json"
	"github.com/hftex/mindsdb/pkg/query"
)

// Table is one named in-memory table with declared columns and rows
type Table struct {
	Name    string        `json:"name"`
	Columns []core.Column `json:"columns"`
	Rows    []core.Row    `json:"rows"`
}

type fixture struct {
	Tables []*Table `json:"tables"`
}

// Connector is an in-memory implementation of core.Connector
type Connector struct {
	*base.Connector

	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
}

// ArgSpec declares the connection arguments the memdb connector accepts
func ArgSpec() *core.ArgSpec {
	return core.NewArgSpec().
		Add(core.Arg{
			Name:        "fixture",
			Type:        core.ArgTypePath,
			Label:       "Fixture file",
			Description: "Path to a JSON file with tables to load on connect",
		})
}

// New creates a memdb connector instance
func New(name string, data map[string]interface{}) (core.Connector, error) {
	return &Connector{
		Connector: base.New(name, ArgSpec(), data),
		tables:    make(map[string]*Table),
	}, nil
}

// Seed replaces the connector's tables, mainly for tests and demos
func (c *Connector) Seed(tables ...*Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[string]*Table, len(tables))
	c.order = c.order[:0]
	for _, t := range tables {
		c.tables[t.Name] = t
		c.order = append(c.order, t.Name)
	}
}

// Connect loads the fixture, if configured, and marks the store available.
// Calling Connect on a live instance is a no-op probe.
func (c *Connector) Connect(ctx context.Context) *core.Status {
	if c.IsConnected() {
		return c.CheckConnection(ctx)
	}

	if path, ok := c.StringArg("fixture"); ok {
		if err := c.loadFixture(path); err != nil {
			c.SetConnected(false)
			return core.StatusFromError(err)
		}
	}

	c.SetConnected(true)
	return c.CheckConnection(ctx)
}

func (c *Connector) loadFixture(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "cannot read fixture file")
	}
	defer f.Close()

	var fx fixture
	if err := json.NewDecoder(f).Decode(&fx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "malformed fixture file")
	}
	c.Seed(fx.Tables...)
	return nil
}

// Disconnect marks the store unavailable. Safe to call repeatedly.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.SetConnected(false)
	return nil
}

// CheckConnection reports whether the store is available
func (c *Connector) CheckConnection(ctx context.Context) *core.Status {
	connected := c.IsConnected()
	c.Metrics().RecordHealthCheck(connected)
	if !connected {
		return core.NewStatusError(errors.ErrorTypeConnection, "memdb connector is not connected", nil)
	}
	return core.NewStatusOK()
}

// NativeQuery executes a JSON statement document. The memdb native form is
// the JSON envelope encoding of a structured statement.
func (c *Connector) NativeQuery(ctx context.Context, statement string) *core.Response {
	stmt, err := query.DecodeStatement([]byte(statement))
	if err != nil {
		return core.ErrorResponse(err)
	}
	return c.Query(ctx, stmt)
}

// Query evaluates a structured statement against the in-memory tables
func (c *Connector) Query(ctx context.Context, stmt query.Statement) *core.Response {
	if !c.IsConnected() {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "memdb connector is not connected", nil)
	}

	timer := c.Metrics().NewTimer("query")
	resp := c.evaluate(stmt)
	if resp.OK() {
		timer.Stop(nil)
	} else {
		timer.Stop(errors.New(resp.ErrorKind(), resp.ErrorMessage()))
	}
	return resp
}

// Tables lists every in-memory table
func (c *Connector) Tables(ctx context.Context) *core.Response {
	if !c.IsConnected() {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "memdb connector is not connected", nil)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]core.Row, 0, len(c.order))
	for _, name := range c.order {
		rows = append(rows, core.Row{
			core.ColumnTableName: name,
			core.ColumnTableType: "BASE TABLE",
		})
	}
	return core.NewTableResponse(rows, []core.Column{
		{Name: core.ColumnTableName, Type: "string"},
		{Name: core.ColumnTableType, Type: "string"},
	})
}

// Columns describes the declared columns of one table
func (c *Connector) Columns(ctx context.Context, table string) *core.Response {
	if !c.IsConnected() {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "memdb connector is not connected", nil)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[table]
	if !ok {
		return core.NewErrorResponse(errors.ErrorTypeSchemaLookup,
			"table "+table+" does not exist", nil)
	}

	rows := make([]core.Row, 0, len(t.Columns))
	for _, col := range t.Columns {
		typ := col.Type
		if typ == "" {
			typ = "string"
		}
		rows = append(rows, core.Row{
			core.ColumnColumnName: col.Name,
			core.ColumnDataType:   typ,
		})
	}
	return core.NewTableResponse(rows, []core.Column{
		{Name: core.ColumnColumnName, Type: "string"},
		{Name: core.ColumnDataType, Type: "string"},
	})
}
