// Package core defines the contract every connector implements: the
// lifecycle state machine, the dual-mode query execution surface, the
// uniform response envelopes and the connection argument schema. The query
// engine programs exclusively against these types; backend protocols stay
// behind them.
package core

import (
	"context"

	"github.com/hftex/mindsdb/pkg/query"
)

// HandlerKind distinguishes data connectors from ML engine connectors
type HandlerKind string

const (
	// HandlerKindData marks connectors exposing tabular data backends
	HandlerKindData HandlerKind = "data"
	// HandlerKindML marks connectors exposing machine learning engines
	HandlerKindML HandlerKind = "ml"
)

// Well-known column names for introspection result sets. Connectors emit
// these so the engine can consume table and column listings uniformly.
const (
	ColumnTableName   = "TABLE_NAME"
	ColumnTableSchema = "TABLE_SCHEMA"
	ColumnTableType   = "TABLE_TYPE"
	ColumnColumnName  = "COLUMN_NAME"
	ColumnDataType    = "DATA_TYPE"
	ColumnNullable    = "IS_NULLABLE"
)

// Connector is the uniform contract between the query engine and one
// backing store.
//
// Lifecycle: instances start disconnected. Connect dials the backend and
// verifies the result with a health probe ("attempt, then verify"); it is
// idempotent and never corrupts state when called on a live instance.
// Disconnect releases resources and is a no-op when already disconnected.
// CheckConnection is a probe-only health check: it reports current
// health, corrects a stale connection flag, and never reconnects.
//
// Queries: NativeQuery executes a backend-native statement verbatim; Query
// translates a structured statement into the backend's execution form.
// Both surface every failure, including translation failures, as an error
// envelope rather than an escaping fault.
type Connector interface {
	// Name returns the instance name the connector was registered under
	Name() string

	// Connect establishes the backend connection and returns the result
	// of an immediate health probe
	Connect(ctx context.Context) *Status

	// Disconnect releases all resources acquired by Connect
	Disconnect(ctx context.Context) error

	// CheckConnection probes backend health without reconnecting
	CheckConnection(ctx context.Context) *Status

	// NativeQuery executes a backend-native statement. Text-protocol
	// backends receive it verbatim; document backends parse it as a
	// native command document.
	NativeQuery(ctx context.Context, statement string) *Response

	// Query translates and executes a structured statement
	Query(ctx context.Context, stmt query.Statement) *Response

	// Tables lists every addressable table-like entity as a table
	// response whose rows carry at least ColumnTableName
	Tables(ctx context.Context) *Response

	// Columns describes the columns of a table previously returned by
	// Tables. Unknown tables yield a schema_lookup failure envelope.
	Columns(ctx context.Context, table string) *Response

	// Describe renders the connection configuration, redacting secret
	// arguments unless reveal is set
	Describe(reveal bool) []RenderedArg
}
