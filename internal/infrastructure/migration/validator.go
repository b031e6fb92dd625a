package migration

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/lendingops/backend/pkg/query"
)

// FragmentValidator checks a rendered fragment before it is written to the
// schema description file
type FragmentValidator interface {
	Validate(table string, columns []string, fragment string) error
}

// NewValidator returns the validator for a dialect. MySQL/TiDB fragments are
// parsed; other dialects are accepted as rendered.
func NewValidator(d query.Dialect) FragmentValidator {
	if d.Name() == query.DialectMySQL {
		return &ParserValidator{parser: parser.New()}
	}
	return nopValidator{}
}

type nopValidator struct{}

func (nopValidator) Validate(string, []string, string) error { return nil }

// ParserValidator parses MySQL DDL with the TiDB SQL parser. The parser is
// not safe for concurrent use.
type ParserValidator struct {
	mu     sync.Mutex
	parser *parser.Parser
}

// Validate requires exactly one CREATE TABLE for table whose column set
// equals columns
func (v *ParserValidator) Validate(table string, columns []string, fragment string) error {
	v.mu.Lock()
	stmts, _, err := v.parser.Parse(fragment, "", "")
	v.mu.Unlock()
	if err != nil {
		return fmt.Errorf("generated DDL does not parse: %w", err)
	}
	if len(stmts) != 1 {
		return fmt.Errorf("generated DDL has %d statements, expected 1", len(stmts))
	}

	create, ok := stmts[0].(*ast.CreateTableStmt)
	if !ok {
		return fmt.Errorf("generated DDL is %T, expected CREATE TABLE", stmts[0])
	}
	if create.Table.Name.L != table {
		return fmt.Errorf("generated DDL creates %s, expected %s", create.Table.Name.L, table)
	}

	got := make([]string, 0, len(create.Cols))
	for _, col := range create.Cols {
		got = append(got, col.Name.Name.L)
	}
	want := append([]string(nil), columns...)
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("generated DDL columns [%s] do not match [%s]", strings.Join(got, ", "), strings.Join(want, ", "))
	}
	return nil
}
