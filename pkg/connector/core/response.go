package core

import (
	"github.com/hftex/mindsdb/pkg/errors"
)

// ResponseType tags the variant carried by a Response
type ResponseType string

const (
	// ResponseTypeTable marks a tabular result set
	ResponseTypeTable ResponseType = "table"
	// ResponseTypeOK marks a successful operation with no result set
	ResponseTypeOK ResponseType = "ok"
	// ResponseTypeError marks a failed operation
	ResponseTypeError ResponseType = "error"
)

// Row is one result record, keyed by column name
type Row map[string]interface{}

// Column describes one result column: its name and declared backend type.
// Order in a Response is display order.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Response is the uniform result container every query operation returns.
// Exactly one variant is populated: a table (rows plus column metadata), a
// bare OK, or an error with a machine-checkable kind. Responses are
// immutable once constructed.
type Response struct {
	respType     ResponseType
	rows         []Row
	columns      []Column
	affectedRows int64
	errorKind    errors.ErrorType
	errorMessage string
	cause        error
}

// NewTableResponse builds a success envelope carrying a result set. Columns
// must list, in display order, every column name appearing in any row; a
// declared column with zero matching rows is legal (empty result set).
func NewTableResponse(rows []Row, columns []Column) *Response {
	return &Response{
		respType: ResponseTypeTable,
		rows:     rows,
		columns:  columns,
	}
}

// NewOKResponse builds a success envelope for a statement that produced no
// result set, recording how many rows it affected
func NewOKResponse(affectedRows int64) *Response {
	return &Response{
		respType:     ResponseTypeOK,
		affectedRows: affectedRows,
	}
}

// NewErrorResponse builds a failure envelope with an explicit kind, message
// and opaque original cause
func NewErrorResponse(kind errors.ErrorType, message string, cause error) *Response {
	return &Response{
		respType:     ResponseTypeError,
		errorKind:    kind,
		errorMessage: message,
		cause:        cause,
	}
}

// ErrorResponse builds a failure envelope from err, lifting its structured
// kind when it carries one
func ErrorResponse(err error) *Response {
	return &Response{
		respType:     ResponseTypeError,
		errorKind:    errors.TypeOf(err),
		errorMessage: err.Error(),
		cause:        err,
	}
}

// Type returns the populated variant tag
func (r *Response) Type() ResponseType {
	return r.respType
}

// OK reports whether the response is a success variant
func (r *Response) OK() bool {
	return r.respType != ResponseTypeError
}

// Rows returns the result rows of a table response
func (r *Response) Rows() []Row {
	return r.rows
}

// Columns returns the ordered column metadata of a table response
func (r *Response) Columns() []Column {
	return r.columns
}

// AffectedRows returns the affected row count of an OK response
func (r *Response) AffectedRows() int64 {
	return r.affectedRows
}

// ErrorKind returns the machine-checkable kind of a failure
func (r *Response) ErrorKind() errors.ErrorType {
	return r.errorKind
}

// ErrorMessage returns the human-readable message of a failure
func (r *Response) ErrorMessage() string {
	return r.errorMessage
}

// Cause returns the opaque original cause of a failure, if recorded
func (r *Response) Cause() error {
	return r.cause
}

// Status is the uniform result of lifecycle and health operations
type Status struct {
	success      bool
	errorKind    errors.ErrorType
	errorMessage string
	cause        error
}

// NewStatusOK builds a healthy status
func NewStatusOK() *Status {
	return &Status{success: true}
}

// NewStatusError builds a failed status with an explicit kind and message
func NewStatusError(kind errors.ErrorType, message string, cause error) *Status {
	return &Status{
		errorKind:    kind,
		errorMessage: message,
		cause:        cause,
	}
}

// StatusFromError builds a failed status from err, lifting its structured
// kind when it carries one
func StatusFromError(err error) *Status {
	return &Status{
		errorKind:    errors.TypeOf(err),
		errorMessage: err.Error(),
		cause:        err,
	}
}

// OK reports whether the operation succeeded
func (s *Status) OK() bool {
	return s.success
}

// ErrorKind returns the machine-checkable kind of a failed status
func (s *Status) ErrorKind() errors.ErrorType {
	return s.errorKind
}

// ErrorMessage returns the human-readable message of a failed status
func (s *Status) ErrorMessage() string {
	return s.errorMessage
}

// Cause returns the opaque original cause of a failed status, if recorded
func (s *Status) Cause() error {
	return s.cause
}
