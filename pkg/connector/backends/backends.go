// Package backends aggregates the built-in connector implementations.
// Importing it registers every built-in backend with the global registry.
package backends

import (
	// Import all built-in backends to trigger init() registration
	_ "github.com/hftex/mindsdb/pkg/connector/backends/memdb"
	_ "github.com/hftex/mindsdb/pkg/connector/backends/mongodb"
	_ "github.com/hftex/mindsdb/pkg/connector/backends/mysql"
	_ "github.com/hftex/mindsdb/pkg/connector/backends/postgres"
	_ "github.com/hftex/mindsdb/pkg/connector/backends/snowflake"
)
