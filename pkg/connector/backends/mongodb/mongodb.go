// Package mongodb implements the MongoDB connector. Collections surface as
// tables; the native statement form is an extended-JSON command document.
package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/connector/base"
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
)

// Connector implements core.Connector for MongoDB
type Connector struct {
	*base.Connector

	// mu guards client so a health probe never races a concurrent
	// disconnect or reconnect
	mu     sync.RWMutex
	client *mongo.Client
}

// ArgSpec declares the connection arguments the mongodb connector accepts
func ArgSpec() *core.ArgSpec {
	return core.NewArgSpec().
		Add(core.Arg{Name: "host", Type: core.ArgTypeString, Label: "Host", Description: "Server hostname or IP address"}).
		Add(core.Arg{Name: "port", Type: core.ArgTypeInt, Label: "Port", Description: "Server port, 27017 by default"}).
		Add(core.Arg{Name: "user", Type: core.ArgTypeString, Label: "User", Description: "Authentication user"}).
		Add(core.Arg{Name: "password", Type: core.ArgTypePassword, Label: "Password", Description: "Authentication password"}).
		Add(core.Arg{Name: "database", Type: core.ArgTypeString, Label: "Database", Description: "Database to connect to", Required: true}).
		Add(core.Arg{Name: "uri", Type: core.ArgTypeURL, Label: "Connection URI", Description: "Full connection URI, overrides host, port and credentials"})
}

// New creates a mongodb connector instance. No I/O happens until Connect.
func New(name string, data map[string]interface{}) (core.Connector, error) {
	return &Connector{
		Connector: base.New(name, ArgSpec(), data),
	}, nil
}

func (c *Connector) uri() string {
	if uri, ok := c.StringArg("uri"); ok {
		return uri
	}
	host := c.StringArgDefault("host", "localhost")
	port := c.IntArgDefault("port", 27017)
	if user, ok := c.StringArg("user"); ok {
		password, _ := c.StringArg("password")
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", user, password, host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", host, port)
}

// handle returns the current client under the read lock
func (c *Connector) handle() *mongo.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// swapHandle installs client and returns the client it replaced
func (c *Connector) swapHandle(client *mongo.Client) *mongo.Client {
	c.mu.Lock()
	old := c.client
	c.client = client
	c.mu.Unlock()
	return old
}

func (c *Connector) database(client *mongo.Client) *mongo.Database {
	return client.Database(c.StringArgDefault("database", ""))
}

// Connect establishes the client and verifies it with a ping
func (c *Connector) Connect(ctx context.Context) *core.Status {
	if c.IsConnected() && c.handle() != nil {
		return c.CheckConnection(ctx)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri()))
	if err != nil {
		c.SetConnected(false)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "cannot create mongodb client"))
	}

	// a broken client may survive MarkBroken; tear it down before taking over
	if old := c.swapHandle(client); old != nil {
		_ = old.Disconnect(ctx)
	}
	c.SetConnected(true)
	c.Logger().Info("mongodb client established",
		zap.String("database", c.StringArgDefault("database", "")))

	status := c.CheckConnection(ctx)
	if !status.OK() {
		if failed := c.swapHandle(nil); failed != nil {
			_ = failed.Disconnect(ctx)
		}
		c.SetConnected(false)
	}
	return status
}

// Disconnect tears down the client. Safe to call repeatedly.
func (c *Connector) Disconnect(ctx context.Context) error {
	old := c.swapHandle(nil)
	c.SetConnected(false)
	if old == nil {
		return nil
	}
	if err := old.Disconnect(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "error disconnecting mongodb client")
	}
	return nil
}

// CheckConnection pings the primary without reconnecting
func (c *Connector) CheckConnection(ctx context.Context) *core.Status {
	client := c.handle()
	if client == nil {
		c.Metrics().RecordHealthCheck(false)
		return core.NewStatusError(errors.ErrorTypeConnection, "mongodb connector is not connected", nil)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		c.Metrics().RecordHealthCheck(false)
		c.MarkBroken(err)
		return core.StatusFromError(errors.Wrap(err, errors.ErrorTypeConnection, "mongodb ping failed"))
	}

	c.Metrics().RecordHealthCheck(true)
	c.SetConnected(true)
	return core.NewStatusOK()
}

// NativeQuery executes an extended-JSON command document against the
// configured database
func (c *Connector) NativeQuery(ctx context.Context, statement string) *core.Response {
	client := c.handle()
	if client == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mongodb connector is not connected", nil)
	}

	var cmd bson.D
	if err := bson.UnmarshalExtJSON([]byte(statement), true, &cmd); err != nil {
		wrapped := errors.Wrap(err, errors.ErrorTypeQueryTranslation, "statement is not a valid command document")
		return core.ErrorResponse(wrapped)
	}
	if len(cmd) == 0 {
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation, "empty command document", nil)
	}

	timer := c.Metrics().NewTimer("native_query")

	var result bson.D
	if err := c.database(client).RunCommand(ctx, cmd).Decode(&result); err != nil {
		timer.Stop(err)
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	timer.Stop(nil)

	if docs, ok := cursorBatch(result); ok {
		return docsToResponse(docs)
	}
	return docsToResponse([]bson.D{result})
}

// cursorBatch extracts cursor.firstBatch from a command reply, if present
func cursorBatch(result bson.D) ([]bson.D, bool) {
	for _, el := range result {
		if el.Key != "cursor" {
			continue
		}
		cursor, ok := el.Value.(bson.D)
		if !ok {
			return nil, false
		}
		for _, inner := range cursor {
			if inner.Key != "firstBatch" {
				continue
			}
			batch, ok := inner.Value.(bson.A)
			if !ok {
				return nil, false
			}
			docs := make([]bson.D, 0, len(batch))
			for _, item := range batch {
				if doc, ok := item.(bson.D); ok {
					docs = append(docs, doc)
				}
			}
			return docs, true
		}
	}
	return nil, false
}

// Tables lists the collections of the configured database
func (c *Connector) Tables(ctx context.Context) *core.Response {
	client := c.handle()
	if client == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mongodb connector is not connected", nil)
	}

	timer := c.Metrics().NewTimer("get_tables")
	names, err := c.database(client).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		timer.Stop(err)
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	timer.Stop(nil)

	rows := make([]core.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, core.Row{
			core.ColumnTableName: name,
			core.ColumnTableType: "collection",
		})
	}
	return core.NewTableResponse(rows, []core.Column{
		{Name: core.ColumnTableName, Type: "string"},
		{Name: core.ColumnTableType, Type: "string"},
	})
}

// Columns derives a column listing from the newest document of the
// collection. Document stores declare no schema, so field names and BSON
// types of a sample document stand in for it.
func (c *Connector) Columns(ctx context.Context, table string) *core.Response {
	client := c.handle()
	if client == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mongodb connector is not connected", nil)
	}

	names, err := c.database(client).ListCollectionNames(ctx, bson.D{{Key: "name", Value: table}})
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, "collection lookup failed: "+err.Error(), err)
	}
	if len(names) == 0 {
		return core.NewErrorResponse(errors.ErrorTypeSchemaLookup, "collection "+table+" does not exist", nil)
	}

	columns := []core.Column{
		{Name: core.ColumnColumnName, Type: "string"},
		{Name: core.ColumnDataType, Type: "string"},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "$natural", Value: -1}})
	raw, err := c.database(client).Collection(table).FindOne(ctx, bson.D{}, opts).Raw()
	if err == mongo.ErrNoDocuments {
		// Empty collection: a declared shape with zero rows is legal
		return core.NewTableResponse(nil, columns)
	}
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	elements, err := raw.Elements()
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	rows := make([]core.Row, 0, len(elements))
	for _, el := range elements {
		rows = append(rows, core.Row{
			core.ColumnColumnName: el.Key(),
			core.ColumnDataType:   el.Value().Type.String(),
		})
	}
	return core.NewTableResponse(rows, columns)
}
