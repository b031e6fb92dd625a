package query

import (
	"fmt"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []any
}

type condition struct {
	column Column
	value  any
	asUUID bool
}

type assignment struct {
	column Column
	value  any
}

// Builder assembles statements against a resolved Relation. Identifiers come
// only from the relation; every data value is emitted as a bound parameter.
type Builder struct {
	queryType QueryType
	relation  *Relation
	where     []condition
	values    []assignment
	orderBy   *Column
	desc      bool
	returning bool
	err       error
}

// Select creates a SELECT * builder
func Select(rel *Relation) *Builder {
	return &Builder{queryType: QueryTypeSelect, relation: rel}
}

// Insert creates an INSERT builder
func Insert(rel *Relation) *Builder {
	return &Builder{queryType: QueryTypeInsert, relation: rel}
}

func (b *Builder) check(col Column) bool {
	if b.err != nil {
		return false
	}
	if b.relation == nil || !b.relation.owns(col) {
		b.err = fmt.Errorf("column %q does not belong to relation", col.name)
		return false
	}
	return true
}

// WhereUUID adds an equality condition with the bound value cast to a UUID
func (b *Builder) WhereUUID(col Column, value string) *Builder {
	if b.check(col) {
		b.where = append(b.where, condition{column: col, value: value, asUUID: true})
	}
	return b
}

// Set adds a column value to an INSERT
func (b *Builder) Set(col Column, value any) *Builder {
	if b.queryType != QueryTypeInsert {
		return b
	}
	if b.check(col) {
		b.values = append(b.values, assignment{column: col, value: value})
	}
	return b
}

// OrderBy sorts a SELECT by a single column
func (b *Builder) OrderBy(col Column, desc bool) *Builder {
	if b.queryType == QueryTypeSelect && b.check(col) {
		b.orderBy = &col
		b.desc = desc
	}
	return b
}

// Returning asks an INSERT to return the stored row where the dialect allows it
func (b *Builder) Returning() *Builder {
	b.returning = true
	return b
}

// Build renders the statement for the given dialect
func (b *Builder) Build(d Dialect) (QueryResult, error) {
	if b.err != nil {
		return QueryResult{}, b.err
	}
	if b.relation == nil {
		return QueryResult{}, fmt.Errorf("query has no relation")
	}

	switch b.queryType {
	case QueryTypeSelect:
		return b.buildSelect(d), nil
	case QueryTypeInsert:
		return b.buildInsert(d)
	default:
		return QueryResult{}, fmt.Errorf("unsupported query type: %s", b.queryType)
	}
}

func (b *Builder) buildSelect(d Dialect) QueryResult {
	var sb strings.Builder
	params := make([]any, 0, len(b.where))

	sb.WriteString("SELECT * FROM ")
	sb.WriteString(d.QuoteIdent(b.relation.name))

	if len(b.where) > 0 {
		clauses := make([]string, 0, len(b.where))
		for _, c := range b.where {
			params = append(params, c.value)
			ph := d.Placeholder(len(params))
			if c.asUUID {
				ph = d.CastUUID(ph)
			}
			clauses = append(clauses, fmt.Sprintf("%s = %s", d.QuoteIdent(c.column.name), ph))
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	if b.orderBy != nil {
		dir := "ASC"
		if b.desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", d.QuoteIdent(b.orderBy.name), dir)
	}

	return QueryResult{SQL: sb.String(), Params: params}
}

func (b *Builder) buildInsert(d Dialect) (QueryResult, error) {
	if len(b.values) == 0 {
		return QueryResult{}, fmt.Errorf("insert into %s has no values", b.relation.name)
	}

	cols := make([]string, 0, len(b.values))
	placeholders := make([]string, 0, len(b.values))
	params := make([]any, 0, len(b.values))
	for i, a := range b.values {
		cols = append(cols, d.QuoteIdent(a.column.name))
		placeholders = append(placeholders, d.Placeholder(i+1))
		params = append(params, a.value)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(b.relation.name), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if b.returning && d.SupportsReturning() {
		sql += " RETURNING *"
	}

	return QueryResult{SQL: sql, Params: params}, nil
}
