package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeConnection, "backend unreachable")

	assert.Equal(t, ErrorTypeConnection, err.Type)
	assert.Equal(t, "connection: backend unreachable", err.Error())
	assert.NotEmpty(t, err.Stack)
	assert.Nil(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeSchemaLookup, "table %s does not exist", "orders")

	assert.Equal(t, ErrorTypeSchemaLookup, err.Type)
	assert.Contains(t, err.Error(), "table orders does not exist")
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := Wrap(cause, ErrorTypeConnection, "failed to connect")

	assert.Equal(t, ErrorTypeConnection, err.Type)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeQueryExecution, "syntax error")
	outer := Wrap(inner, ErrorTypeQueryExecution, "query failed")

	require.NotEmpty(t, outer.Stack)
	assert.Equal(t, inner.Stack[0], outer.Stack[0])
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"structured", New(ErrorTypeConfiguration, "bad args"), ErrorTypeConfiguration},
		{"wrapped", fmt.Errorf("outer: %w", New(ErrorTypeLoad, "init failed")), ErrorTypeLoad},
		{"plain", errors.New("opaque"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeQueryTranslation, "GROUP BY not supported")

	assert.True(t, IsType(err, ErrorTypeQueryTranslation))
	assert.False(t, IsType(err, ErrorTypeQueryExecution))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeQueryTranslation))

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeQueryTranslation))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeConfiguration, "missing required connection arguments").
		WithDetail("missing", []string{"host", "user"})

	require.NotNil(t, err.Details)
	assert.Equal(t, []string{"host", "user"}, err.Details["missing"])
}
