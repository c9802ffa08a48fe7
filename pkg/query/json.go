package query

import (
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/json"
)

// statementEnvelope is the wire shape of an encoded statement: exactly one
// field is populated.
type statementEnvelope struct {
	Select *Select `json:"select,omitempty"`
	Insert *Insert `json:"insert,omitempty"`
	Update *Update `json:"update,omitempty"`
	Delete *Delete `json:"delete,omitempty"`
}

// EncodeStatement serializes a statement to its JSON envelope form
func EncodeStatement(stmt Statement) ([]byte, error) {
	var env statementEnvelope
	switch s := stmt.(type) {
	case *Select:
		env.Select = s
	case *Insert:
		env.Insert = s
	case *Update:
		env.Update = s
	case *Delete:
		env.Delete = s
	default:
		return nil, errors.Newf(errors.ErrorTypeQueryTranslation, "unsupported statement type %T", stmt)
	}
	return json.Marshal(&env)
}

// DecodeStatement parses the JSON envelope form of a statement
func DecodeStatement(data []byte) (Statement, error) {
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrorTypeQueryTranslation, "statement document is not valid JSON")
	}

	var env statementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQueryTranslation, "malformed statement document")
	}

	var stmts []Statement
	if env.Select != nil {
		stmts = append(stmts, env.Select)
	}
	if env.Insert != nil {
		stmts = append(stmts, env.Insert)
	}
	if env.Update != nil {
		stmts = append(stmts, env.Update)
	}
	if env.Delete != nil {
		stmts = append(stmts, env.Delete)
	}

	if len(stmts) != 1 {
		return nil, errors.New(errors.ErrorTypeQueryTranslation,
			"statement document must contain exactly one of select, insert, update, delete")
	}
	return stmts[0], nil
}
