package query

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to splice into SQL as an identifier
func ValidIdentifier(name string) bool {
	return len(name) <= 64 && identifierPattern.MatchString(name)
}

// Relation is a table whose name and column set have been resolved from catalog
// metadata. Statements can only reference columns obtained from a Relation.
type Relation struct {
	name    string
	columns []string
	index   map[string]struct{}
}

// Column is a handle to a column of a resolved Relation
type Column struct {
	relation string
	name     string
}

// Name returns the physical column name
func (c Column) Name() string { return c.name }

// NewRelation resolves a relation. Every identifier must match ^[a-z_][a-z0-9_]*$.
func NewRelation(name string, columns []string) (*Relation, error) {
	if !ValidIdentifier(name) {
		return nil, fmt.Errorf("invalid table identifier %q", name)
	}
	r := &Relation{name: name, index: make(map[string]struct{}, len(columns))}
	for _, col := range columns {
		if !ValidIdentifier(col) {
			return nil, fmt.Errorf("invalid column identifier %q on table %s", col, name)
		}
		if _, dup := r.index[col]; dup {
			continue
		}
		r.index[col] = struct{}{}
		r.columns = append(r.columns, col)
	}
	return r, nil
}

// Name returns the physical table name
func (r *Relation) Name() string { return r.name }

// Column looks up a column by its physical name
func (r *Relation) Column(name string) (Column, bool) {
	if _, ok := r.index[name]; !ok {
		return Column{}, false
	}
	return Column{relation: r.name, name: name}, true
}

// ColumnNames returns the physical column names in declaration order
func (r *Relation) ColumnNames() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r *Relation) owns(c Column) bool {
	if c.relation != r.name {
		return false
	}
	_, ok := r.index[c.name]
	return ok
}
