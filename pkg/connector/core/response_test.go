package core

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hftex/mindsdb/pkg/errors"
)

func TestNewTableResponse(t *testing.T) {
	rows := []Row{{"id": 1, "name": "ana"}}
	columns := []Column{{Name: "id", Type: "integer"}, {Name: "name", Type: "text"}}

	resp := NewTableResponse(rows, columns)

	assert.Equal(t, ResponseTypeTable, resp.Type())
	assert.True(t, resp.OK())
	assert.Equal(t, rows, resp.Rows())
	assert.Equal(t, columns, resp.Columns())
}

func TestNewTableResponseEmpty(t *testing.T) {
	resp := NewTableResponse(nil, []Column{{Name: "id", Type: "integer"}})

	assert.True(t, resp.OK())
	assert.Empty(t, resp.Rows())
	assert.Len(t, resp.Columns(), 1)
}

func TestNewOKResponse(t *testing.T) {
	resp := NewOKResponse(3)

	assert.Equal(t, ResponseTypeOK, resp.Type())
	assert.True(t, resp.OK())
	assert.Equal(t, int64(3), resp.AffectedRows())
}

func TestErrorResponseLiftsKind(t *testing.T) {
	cause := errors.New(errors.ErrorTypeSchemaLookup, "table orders does not exist")
	resp := ErrorResponse(cause)

	assert.Equal(t, ResponseTypeError, resp.Type())
	assert.False(t, resp.OK())
	assert.Equal(t, errors.ErrorTypeSchemaLookup, resp.ErrorKind())
	assert.Contains(t, resp.ErrorMessage(), "orders")
	assert.Equal(t, cause, resp.Cause())
}

func TestErrorResponseOpaqueCause(t *testing.T) {
	resp := ErrorResponse(stderrors.New("driver blew up"))

	assert.Equal(t, errors.ErrorTypeInternal, resp.ErrorKind())
	assert.Equal(t, "driver blew up", resp.ErrorMessage())
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(errors.ErrorTypeConnection, "backend unreachable", nil)

	assert.Equal(t, errors.ErrorTypeConnection, resp.ErrorKind())
	assert.Equal(t, "backend unreachable", resp.ErrorMessage())
	assert.Nil(t, resp.Cause())
}

func TestStatus(t *testing.T) {
	ok := NewStatusOK()
	assert.True(t, ok.OK())
	assert.Empty(t, ok.ErrorMessage())

	failed := NewStatusError(errors.ErrorTypeConnection, "authentication rejected", nil)
	assert.False(t, failed.OK())
	assert.Equal(t, errors.ErrorTypeConnection, failed.ErrorKind())
	assert.Equal(t, "authentication rejected", failed.ErrorMessage())
}

func TestStatusFromError(t *testing.T) {
	cause := errors.New(errors.ErrorTypeConfiguration, "missing host")
	status := StatusFromError(cause)

	require.False(t, status.OK())
	assert.Equal(t, errors.ErrorTypeConfiguration, status.ErrorKind())
	assert.Equal(t, cause, status.Cause())

	opaque := StatusFromError(stderrors.New("plain"))
	assert.Equal(t, errors.ErrorTypeInternal, opaque.ErrorKind())
}
