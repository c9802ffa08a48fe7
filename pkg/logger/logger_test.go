package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "shouting", Encoding: "json"})
	require.Error(t, err)
}

func TestNewLoggerDefaultsOutputToStdout(t *testing.T) {
	l, err := newLogger(Config{Level: "info", Encoding: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestWithContext(t *testing.T) {
	base := Get()

	// a bare context adds nothing
	assert.Same(t, base, WithContext(context.Background()))

	ctx := context.WithValue(context.Background(), ConnectorKey, "pg_main")
	ctx = context.WithValue(ctx, OperationKey, "get_tables")
	assert.NotSame(t, base, WithContext(ctx))
}
