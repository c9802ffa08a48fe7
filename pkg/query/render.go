package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hftex/mindsdb/pkg/errors"
)

// Dialect captures the lexical differences between SQL backends: how bind
// placeholders are numbered and how identifiers are quoted.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	QuoteIdent  func(ident string) string
}

// Postgres uses $1-style placeholders and double-quoted identifiers
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	QuoteIdent:  quoteWith(`"`),
}

// MySQL uses ? placeholders and backtick-quoted identifiers
var MySQL = Dialect{
	Name:        "mysql",
	Placeholder: func(n int) string { return "?" },
	QuoteIdent:  quoteWith("`"),
}

// Snowflake uses ? placeholders and double-quoted identifiers
var Snowflake = Dialect{
	Name:        "snowflake",
	Placeholder: func(n int) string { return "?" },
	QuoteIdent:  quoteWith(`"`),
}

func quoteWith(q string) func(string) string {
	return func(ident string) string {
		return q + strings.ReplaceAll(ident, q, q+q) + q
	}
}

// Renderer translates structured statements into dialect-specific SQL text
// plus a positional argument list. Values never end up inline in the text.
type Renderer struct {
	dialect Dialect
}

// NewRenderer creates a renderer for the given dialect
func NewRenderer(dialect Dialect) *Renderer {
	return &Renderer{dialect: dialect}
}

// Render translates stmt into SQL text and bind arguments. Unsupported or
// malformed constructs produce a query_translation error.
func (r *Renderer) Render(stmt Statement) (string, []interface{}, error) {
	switch s := stmt.(type) {
	case *Select:
		return r.renderSelect(s)
	case *Insert:
		return r.renderInsert(s)
	case *Update:
		return r.renderUpdate(s)
	case *Delete:
		return r.renderDelete(s)
	case nil:
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "nil statement")
	default:
		return "", nil, errors.Newf(errors.ErrorTypeQueryTranslation, "unsupported statement type %T", stmt)
	}
}

func (r *Renderer) renderSelect(s *Select) (string, []interface{}, error) {
	if s.Table == "" {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "select requires a table")
	}

	var sb strings.Builder
	var args []interface{}

	sb.WriteString("SELECT ")
	if len(s.Columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, col := range s.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			if col == "*" {
				sb.WriteString("*")
				continue
			}
			sb.WriteString(r.dialect.QuoteIdent(col))
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(r.quoteQualified(s.Table))

	if s.Where != nil {
		sb.WriteString(" WHERE ")
		if err := r.renderCondition(&sb, &args, s.Where); err != nil {
			return "", nil, err
		}
	}

	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, col := range s.GroupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.dialect.QuoteIdent(col))
		}
	}

	if len(s.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, ord := range s.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.dialect.QuoteIdent(ord.Column))
			if ord.Desc {
				sb.WriteString(" DESC")
			}
		}
	}

	if s.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *s.Limit)
	}
	if s.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *s.Offset)
	}

	return sb.String(), args, nil
}

func (r *Renderer) renderInsert(s *Insert) (string, []interface{}, error) {
	if s.Table == "" {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "insert requires a table")
	}
	if len(s.Columns) == 0 {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "insert requires columns")
	}
	if len(s.Rows) == 0 {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "insert requires at least one row")
	}

	var sb strings.Builder
	var args []interface{}

	sb.WriteString("INSERT INTO ")
	sb.WriteString(r.quoteQualified(s.Table))
	sb.WriteString(" (")
	for i, col := range s.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.dialect.QuoteIdent(col))
	}
	sb.WriteString(") VALUES ")

	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return "", nil, errors.Newf(errors.ErrorTypeQueryTranslation,
				"insert row %d has %d values for %d columns", i, len(row), len(s.Columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, v)
			sb.WriteString(r.dialect.Placeholder(len(args)))
		}
		sb.WriteString(")")
	}

	return sb.String(), args, nil
}

func (r *Renderer) renderUpdate(s *Update) (string, []interface{}, error) {
	if s.Table == "" {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "update requires a table")
	}
	if len(s.Set) == 0 {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "update requires at least one assignment")
	}

	var sb strings.Builder
	var args []interface{}

	sb.WriteString("UPDATE ")
	sb.WriteString(r.quoteQualified(s.Table))
	sb.WriteString(" SET ")
	for i, assign := range s.Set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.dialect.QuoteIdent(assign.Column))
		sb.WriteString(" = ")
		args = append(args, assign.Value)
		sb.WriteString(r.dialect.Placeholder(len(args)))
	}

	if s.Where != nil {
		sb.WriteString(" WHERE ")
		if err := r.renderCondition(&sb, &args, s.Where); err != nil {
			return "", nil, err
		}
	}

	return sb.String(), args, nil
}

func (r *Renderer) renderDelete(s *Delete) (string, []interface{}, error) {
	if s.Table == "" {
		return "", nil, errors.New(errors.ErrorTypeQueryTranslation, "delete requires a table")
	}

	var sb strings.Builder
	var args []interface{}

	sb.WriteString("DELETE FROM ")
	sb.WriteString(r.quoteQualified(s.Table))

	if s.Where != nil {
		sb.WriteString(" WHERE ")
		if err := r.renderCondition(&sb, &args, s.Where); err != nil {
			return "", nil, err
		}
	}

	return sb.String(), args, nil
}

func (r *Renderer) renderCondition(sb *strings.Builder, args *[]interface{}, c *Condition) error {
	switch {
	case len(c.And) > 0:
		return r.renderBranch(sb, args, c.And, " AND ")
	case len(c.Or) > 0:
		return r.renderBranch(sb, args, c.Or, " OR ")
	}

	if c.Column == "" {
		return errors.New(errors.ErrorTypeQueryTranslation, "condition leaf requires a column")
	}

	sb.WriteString(r.dialect.QuoteIdent(c.Column))

	switch c.Op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpLike:
		sb.WriteString(" ")
		sb.WriteString(string(c.Op))
		sb.WriteString(" ")
		*args = append(*args, c.Value)
		sb.WriteString(r.dialect.Placeholder(len(*args)))
	case OpIn:
		values, ok := c.Value.([]interface{})
		if !ok || len(values) == 0 {
			return errors.Newf(errors.ErrorTypeQueryTranslation, "IN condition on %q requires a non-empty value list", c.Column)
		}
		sb.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				sb.WriteString(", ")
			}
			*args = append(*args, v)
			sb.WriteString(r.dialect.Placeholder(len(*args)))
		}
		sb.WriteString(")")
	case OpIsNull, OpIsNotNull:
		sb.WriteString(" ")
		sb.WriteString(string(c.Op))
	default:
		return errors.Newf(errors.ErrorTypeQueryTranslation, "unsupported operator %q", c.Op)
	}

	return nil
}

func (r *Renderer) renderBranch(sb *strings.Builder, args *[]interface{}, children []*Condition, sep string) error {
	sb.WriteString("(")
	for i, child := range children {
		if i > 0 {
			sb.WriteString(sep)
		}
		if err := r.renderCondition(sb, args, child); err != nil {
			return err
		}
	}
	sb.WriteString(")")
	return nil
}

// quoteQualified quotes a possibly schema-qualified name part by part
func (r *Renderer) quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = r.dialect.QuoteIdent(part)
	}
	return strings.Join(parts, ".")
}
