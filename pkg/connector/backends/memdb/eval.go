package memdb

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/query"
)

// evaluate dispatches a structured statement. Callers hold no locks.
func (c *Connector) evaluate(stmt query.Statement) *core.Response {
	switch s := stmt.(type) {
	case *query.Select:
		return c.evalSelect(s)
	case *query.Insert:
		return c.evalInsert(s)
	case *query.Update:
		return c.evalUpdate(s)
	case *query.Delete:
		return c.evalDelete(s)
	default:
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
			fmt.Sprintf("unsupported statement type %T", stmt), nil)
	}
}

func (c *Connector) evalSelect(s *query.Select) *core.Response {
	if len(s.GroupBy) > 0 {
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
			"memdb does not support GROUP BY", nil)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[s.Table]
	if !ok {
		return tableNotFound(s.Table)
	}

	var matched []core.Row
	for _, row := range t.Rows {
		keep, err := matchCondition(row, s.Where)
		if err != nil {
			return core.ErrorResponse(err)
		}
		if keep {
			matched = append(matched, row)
		}
	}

	if len(s.OrderBy) > 0 {
		// Sort a copy so stored row order stays untouched
		matched = append([]core.Row(nil), matched...)
		sort.SliceStable(matched, func(i, j int) bool {
			for _, ord := range s.OrderBy {
				cmp := compareValues(matched[i][ord.Column], matched[j][ord.Column])
				if cmp == 0 {
					continue
				}
				if ord.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if s.Offset != nil {
		off := int(*s.Offset)
		if off >= len(matched) {
			matched = nil
		} else {
			matched = matched[off:]
		}
	}
	if s.Limit != nil && int64(len(matched)) > *s.Limit {
		matched = matched[:*s.Limit]
	}

	columns, err := projectColumns(t, s.Columns)
	if err != nil {
		return core.ErrorResponse(err)
	}

	rows := make([]core.Row, 0, len(matched))
	for _, row := range matched {
		projected := make(core.Row, len(columns))
		for _, col := range columns {
			projected[col.Name] = row[col.Name]
		}
		rows = append(rows, projected)
	}

	return core.NewTableResponse(rows, columns)
}

func (c *Connector) evalInsert(s *query.Insert) *core.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[s.Table]
	if !ok {
		return tableNotFound(s.Table)
	}

	declared := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		declared[col.Name] = true
	}
	for _, col := range s.Columns {
		if !declared[col] {
			return core.NewErrorResponse(errors.ErrorTypeSchemaLookup,
				fmt.Sprintf("column %s does not exist in table %s", col, s.Table), nil)
		}
	}

	inserted := make([]core.Row, 0, len(s.Rows))
	for i, values := range s.Rows {
		if len(values) != len(s.Columns) {
			return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
				fmt.Sprintf("insert row %d has %d values for %d columns", i, len(values), len(s.Columns)), nil)
		}
		row := make(core.Row, len(s.Columns))
		for j, col := range s.Columns {
			row[col] = values[j]
		}
		inserted = append(inserted, row)
	}

	t.Rows = append(t.Rows, inserted...)
	return core.NewOKResponse(int64(len(inserted)))
}

func (c *Connector) evalUpdate(s *query.Update) *core.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[s.Table]
	if !ok {
		return tableNotFound(s.Table)
	}

	var affected int64
	for _, row := range t.Rows {
		match, err := matchCondition(row, s.Where)
		if err != nil {
			return core.ErrorResponse(err)
		}
		if !match {
			continue
		}
		for _, assign := range s.Set {
			row[assign.Column] = assign.Value
		}
		affected++
	}
	return core.NewOKResponse(affected)
}

func (c *Connector) evalDelete(s *query.Delete) *core.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[s.Table]
	if !ok {
		return tableNotFound(s.Table)
	}

	kept := t.Rows[:0]
	var affected int64
	for _, row := range t.Rows {
		match, err := matchCondition(row, s.Where)
		if err != nil {
			return core.ErrorResponse(err)
		}
		if match {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return core.NewOKResponse(affected)
}

func tableNotFound(name string) *core.Response {
	return core.NewErrorResponse(errors.ErrorTypeSchemaLookup,
		"table "+name+" does not exist", nil)
}

// projectColumns resolves the selected column list against the table schema
func projectColumns(t *Table, selected []string) ([]core.Column, error) {
	if len(selected) == 0 || (len(selected) == 1 && selected[0] == "*") {
		return append([]core.Column(nil), t.Columns...), nil
	}

	byName := make(map[string]core.Column, len(t.Columns))
	for _, col := range t.Columns {
		byName[col.Name] = col
	}

	out := make([]core.Column, 0, len(selected))
	for _, name := range selected {
		col, ok := byName[name]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchemaLookup,
				"column %s does not exist in table %s", name, t.Name)
		}
		out = append(out, col)
	}
	return out, nil
}

// matchCondition evaluates a filter tree against one row. A nil condition
// matches everything.
func matchCondition(row core.Row, c *query.Condition) (bool, error) {
	if c == nil {
		return true, nil
	}

	if len(c.And) > 0 {
		for _, child := range c.And {
			ok, err := matchCondition(row, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if len(c.Or) > 0 {
		for _, child := range c.Or {
			ok, err := matchCondition(row, child)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	value := row[c.Column]
	switch c.Op {
	case query.OpEq:
		return compareValues(value, c.Value) == 0, nil
	case query.OpNe:
		return compareValues(value, c.Value) != 0, nil
	case query.OpLt:
		return compareValues(value, c.Value) < 0, nil
	case query.OpLte:
		return compareValues(value, c.Value) <= 0, nil
	case query.OpGt:
		return compareValues(value, c.Value) > 0, nil
	case query.OpGte:
		return compareValues(value, c.Value) >= 0, nil
	case query.OpLike:
		pattern, ok := c.Value.(string)
		if !ok {
			return false, errors.Newf(errors.ErrorTypeQueryTranslation,
				"LIKE pattern on %q must be a string", c.Column)
		}
		str, ok := value.(string)
		if !ok {
			return false, nil
		}
		return matchLike(str, pattern), nil
	case query.OpIn:
		values, ok := c.Value.([]interface{})
		if !ok {
			return false, errors.Newf(errors.ErrorTypeQueryTranslation,
				"IN condition on %q requires a value list", c.Column)
		}
		for _, v := range values {
			if compareValues(value, v) == 0 {
				return true, nil
			}
		}
		return false, nil
	case query.OpIsNull:
		return value == nil, nil
	case query.OpIsNotNull:
		return value != nil, nil
	default:
		return false, errors.Newf(errors.ErrorTypeQueryTranslation, "unsupported operator %q", c.Op)
	}
}

// compareValues orders two dynamically typed values. Numeric values compare
// numerically across int/float shapes; everything else compares as strings.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// matchLike evaluates a SQL LIKE pattern: % matches any run, _ one rune
func matchLike(s, pattern string) bool {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
