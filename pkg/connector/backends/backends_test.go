package backends_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/hftex/mindsdb/pkg/connector/backends"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

// Every built-in backend registers through init(), which panics on a
// malformed or duplicate descriptor. Importing the aggregator and finding
// each descriptor intact proves registration succeeded.
func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"memdb", "mongodb", "mysql", "postgres", "snowflake"} {
		desc, err := registry.Get(name)
		require.NoError(t, err, name)
		assert.NoError(t, desc.LoadError, name)
		assert.NotNil(t, desc.Factory, name)
		assert.NotNil(t, desc.ConnectionArgs, name)
	}
}
