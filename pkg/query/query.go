// Package query defines the backend-agnostic representation of a parsed
// statement. The engine's parser produces these values; connectors translate
// them into their backend's native execution form.
package query

// Statement is the sealed set of structured statements a connector must
// translate. Exactly Select, Insert, Update and Delete implement it.
type Statement interface {
	stmt()
}

// Select represents a projection over a single table-like entity
type Select struct {
	Table   string     `json:"table"`
	Columns []string   `json:"columns,omitempty"` // empty means all columns
	Where   *Condition `json:"where,omitempty"`
	GroupBy []string   `json:"group_by,omitempty"`
	OrderBy []Order    `json:"order_by,omitempty"`
	Limit   *int64     `json:"limit,omitempty"`
	Offset  *int64     `json:"offset,omitempty"`
}

// Order represents one ORDER BY term
type Order struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// Insert represents a multi-row insert
type Insert struct {
	Table   string          `json:"table"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Assignment represents one SET column = value pair. Pairs keep declaration
// order so rendered statements are deterministic.
type Assignment struct {
	Column string      `json:"column"`
	Value  interface{} `json:"value"`
}

// Update represents a filtered update
type Update struct {
	Table string       `json:"table"`
	Set   []Assignment `json:"set"`
	Where *Condition   `json:"where,omitempty"`
}

// Delete represents a filtered delete
type Delete struct {
	Table string     `json:"table"`
	Where *Condition `json:"where,omitempty"`
}

func (*Select) stmt() {}
func (*Insert) stmt() {}
func (*Update) stmt() {}
func (*Delete) stmt() {}

// Op is a comparison operator in a condition leaf
type Op string

const (
	OpEq        Op = "="
	OpNe        Op = "!="
	OpLt        Op = "<"
	OpLte       Op = "<="
	OpGt        Op = ">"
	OpGte       Op = ">="
	OpLike      Op = "LIKE"
	OpIn        Op = "IN"
	OpIsNull    Op = "IS NULL"
	OpIsNotNull Op = "IS NOT NULL"
)

// Condition is a boolean filter tree. A node is either a leaf comparison
// (Column/Op/Value populated) or a branch holding And or Or children.
type Condition struct {
	Column string      `json:"column,omitempty"`
	Op     Op          `json:"op,omitempty"`
	Value  interface{} `json:"value,omitempty"`

	And []*Condition `json:"and,omitempty"`
	Or  []*Condition `json:"or,omitempty"`
}

// IsBranch reports whether the condition is a conjunction or disjunction
func (c *Condition) IsBranch() bool {
	return len(c.And) > 0 || len(c.Or) > 0
}

// Eq builds a column = value leaf
func Eq(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpEq, Value: value}
}

// Ne builds a column != value leaf
func Ne(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpNe, Value: value}
}

// Lt builds a column < value leaf
func Lt(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpLt, Value: value}
}

// Lte builds a column <= value leaf
func Lte(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpLte, Value: value}
}

// Gt builds a column > value leaf
func Gt(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpGt, Value: value}
}

// Gte builds a column >= value leaf
func Gte(column string, value interface{}) *Condition {
	return &Condition{Column: column, Op: OpGte, Value: value}
}

// Like builds a column LIKE pattern leaf
func Like(column string, pattern string) *Condition {
	return &Condition{Column: column, Op: OpLike, Value: pattern}
}

// In builds a column IN (values...) leaf
func In(column string, values ...interface{}) *Condition {
	return &Condition{Column: column, Op: OpIn, Value: values}
}

// IsNull builds a column IS NULL leaf
func IsNull(column string) *Condition {
	return &Condition{Column: column, Op: OpIsNull}
}

// IsNotNull builds a column IS NOT NULL leaf
func IsNotNull(column string) *Condition {
	return &Condition{Column: column, Op: OpIsNotNull}
}

// AndOf builds a conjunction of conditions
func AndOf(conditions ...*Condition) *Condition {
	return &Condition{And: conditions}
}

// OrOf builds a disjunction of conditions
func OrOf(conditions ...*Condition) *Condition {
	return &Condition{Or: conditions}
}
