package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/query"
)

// Query translates a structured statement into mongo operations
func (c *Connector) Query(ctx context.Context, stmt query.Statement) *core.Response {
	client := c.handle()
	if client == nil {
		return core.NewErrorResponse(errors.ErrorTypeConnection, "mongodb connector is not connected", nil)
	}

	timer := c.Metrics().NewTimer("query")
	resp := c.translateAndRun(ctx, c.database(client), stmt)
	if resp.OK() {
		timer.Stop(nil)
	} else {
		timer.Stop(errors.New(resp.ErrorKind(), resp.ErrorMessage()))
	}
	return resp
}

func (c *Connector) translateAndRun(ctx context.Context, db *mongo.Database, stmt query.Statement) *core.Response {
	switch s := stmt.(type) {
	case *query.Select:
		return c.runSelect(ctx, db, s)
	case *query.Insert:
		return c.runInsert(ctx, db, s)
	case *query.Update:
		return c.runUpdate(ctx, db, s)
	case *query.Delete:
		return c.runDelete(ctx, db, s)
	default:
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
			fmt.Sprintf("unsupported statement type %T", stmt), nil)
	}
}

func (c *Connector) runSelect(ctx context.Context, db *mongo.Database, s *query.Select) *core.Response {
	if len(s.GroupBy) > 0 {
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
			"GROUP BY has no mongodb translation", nil)
	}

	filter, err := translateCondition(s.Where)
	if err != nil {
		return core.ErrorResponse(err)
	}

	opts := options.Find()
	if len(s.OrderBy) > 0 {
		sortDoc := make(bson.D, 0, len(s.OrderBy))
		for _, ord := range s.OrderBy {
			dir := 1
			if ord.Desc {
				dir = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: ord.Column, Value: dir})
		}
		opts.SetSort(sortDoc)
	}
	if s.Limit != nil {
		opts.SetLimit(*s.Limit)
	}
	if s.Offset != nil {
		opts.SetSkip(*s.Offset)
	}
	if len(s.Columns) > 0 && !(len(s.Columns) == 1 && s.Columns[0] == "*") {
		projection := make(bson.D, 0, len(s.Columns))
		for _, col := range s.Columns {
			projection = append(projection, bson.E{Key: col, Value: 1})
		}
		opts.SetProjection(projection)
	}

	cursor, err := db.Collection(s.Table).Find(ctx, filter, opts)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	return docsToResponse(docs)
}

func (c *Connector) runInsert(ctx context.Context, db *mongo.Database, s *query.Insert) *core.Response {
	if len(s.Columns) == 0 || len(s.Rows) == 0 {
		return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
			"insert requires columns and at least one row", nil)
	}

	docs := make([]interface{}, 0, len(s.Rows))
	for i, values := range s.Rows {
		if len(values) != len(s.Columns) {
			return core.NewErrorResponse(errors.ErrorTypeQueryTranslation,
				fmt.Sprintf("insert row %d has %d values for %d columns", i, len(values), len(s.Columns)), nil)
		}
		doc := make(bson.D, 0, len(s.Columns))
		for j, col := range s.Columns {
			doc = append(doc, bson.E{Key: col, Value: values[j]})
		}
		docs = append(docs, doc)
	}

	result, err := db.Collection(s.Table).InsertMany(ctx, docs)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	return core.NewOKResponse(int64(len(result.InsertedIDs)))
}

func (c *Connector) runUpdate(ctx context.Context, db *mongo.Database, s *query.Update) *core.Response {
	filter, err := translateCondition(s.Where)
	if err != nil {
		return core.ErrorResponse(err)
	}

	set := make(bson.D, 0, len(s.Set))
	for _, assign := range s.Set {
		set = append(set, bson.E{Key: assign.Column, Value: assign.Value})
	}

	result, err := db.Collection(s.Table).UpdateMany(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	return core.NewOKResponse(result.ModifiedCount)
}

func (c *Connector) runDelete(ctx context.Context, db *mongo.Database, s *query.Delete) *core.Response {
	filter, err := translateCondition(s.Where)
	if err != nil {
		return core.ErrorResponse(err)
	}

	result, err := db.Collection(s.Table).DeleteMany(ctx, filter)
	if err != nil {
		return core.NewErrorResponse(errors.ErrorTypeQueryExecution, err.Error(), err)
	}
	return core.NewOKResponse(result.DeletedCount)
}

// translateCondition maps a filter tree onto a mongo filter document. A nil
// condition matches everything.
func translateCondition(c *query.Condition) (bson.D, error) {
	if c == nil {
		return bson.D{}, nil
	}

	if len(c.And) > 0 {
		children, err := translateChildren(c.And)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$and", Value: children}}, nil
	}
	if len(c.Or) > 0 {
		children, err := translateChildren(c.Or)
		if err != nil {
			return nil, err
		}
		return bson.D{{Key: "$or", Value: children}}, nil
	}

	switch c.Op {
	case query.OpEq:
		return bson.D{{Key: c.Column, Value: c.Value}}, nil
	case query.OpNe:
		return operatorLeaf(c.Column, "$ne", c.Value), nil
	case query.OpLt:
		return operatorLeaf(c.Column, "$lt", c.Value), nil
	case query.OpLte:
		return operatorLeaf(c.Column, "$lte", c.Value), nil
	case query.OpGt:
		return operatorLeaf(c.Column, "$gt", c.Value), nil
	case query.OpGte:
		return operatorLeaf(c.Column, "$gte", c.Value), nil
	case query.OpLike:
		pattern, ok := c.Value.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeQueryTranslation,
				"LIKE pattern on %q must be a string", c.Column)
		}
		return operatorLeaf(c.Column, "$regex", likeToRegex(pattern)), nil
	case query.OpIn:
		values, ok := c.Value.([]interface{})
		if !ok || len(values) == 0 {
			return nil, errors.Newf(errors.ErrorTypeQueryTranslation,
				"IN condition on %q requires a non-empty value list", c.Column)
		}
		return operatorLeaf(c.Column, "$in", values), nil
	case query.OpIsNull:
		return bson.D{{Key: c.Column, Value: nil}}, nil
	case query.OpIsNotNull:
		return operatorLeaf(c.Column, "$ne", nil), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeQueryTranslation, "unsupported operator %q", c.Op)
	}
}

func translateChildren(children []*query.Condition) (bson.A, error) {
	out := make(bson.A, 0, len(children))
	for _, child := range children {
		translated, err := translateCondition(child)
		if err != nil {
			return nil, err
		}
		out = append(out, translated)
	}
	return out, nil
}

func operatorLeaf(column, op string, value interface{}) bson.D {
	return bson.D{{Key: column, Value: bson.D{{Key: op, Value: value}}}}
}

// likeToRegex converts a SQL LIKE pattern to an anchored regex
func likeToRegex(pattern string) string {
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
	return sb.String()
}

// docsToResponse shapes ordered documents into a table response. Column
// order follows first appearance across documents.
func docsToResponse(docs []bson.D) *core.Response {
	var columns []core.Column
	seen := make(map[string]bool)

	rows := make([]core.Row, 0, len(docs))
	for _, doc := range docs {
		row := make(core.Row, len(doc))
		for _, el := range doc {
			row[el.Key] = el.Value
			if !seen[el.Key] {
				seen[el.Key] = true
				columns = append(columns, core.Column{Name: el.Key, Type: bsonTypeName(el.Value)})
			}
		}
		rows = append(rows, row)
	}
	return core.NewTableResponse(rows, columns)
}

func bsonTypeName(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case int32, int64, int:
		return "int"
	case float64, float32:
		return "double"
	case bool:
		return "bool"
	case bson.D, bson.M:
		return "object"
	case bson.A:
		return "array"
	case nil:
		return "null"
	default:
		return "string"
	}
}
