package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the syntax differences between the supported SQL backends
type Dialect interface {
	// Name is the dialect identifier ("mysql" or "postgres")
	Name() string
	QuoteIdent(name string) string
	// Placeholder returns the bind marker for the n-th (1-based) parameter
	Placeholder(n int) string
	// Rebind rewrites a query written with '?' markers into the dialect's form
	Rebind(sql string) string
	// CastUUID wraps a placeholder so the bound value is compared as a UUID
	CastUUID(placeholder string) string
	SupportsReturning() bool
}

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

var (
	MySQL    Dialect = mysqlDialect{}
	Postgres Dialect = postgresDialect{}
)

// DialectFor resolves a dialect from its name
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case DialectMySQL, "tidb", "":
		return MySQL, nil
	case DialectPostgres, "postgresql", "pgx":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", name)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return DialectMySQL }

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) Rebind(sql string) string { return sql }

func (mysqlDialect) CastUUID(placeholder string) string {
	return "CAST(" + placeholder + " AS CHAR(36))"
}

func (mysqlDialect) SupportsReturning() bool { return false }

type postgresDialect struct{}

func (postgresDialect) Name() string { return DialectPostgres }

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (d postgresDialect) Rebind(sql string) string {
	var sb strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			sb.WriteString(d.Placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (postgresDialect) CastUUID(placeholder string) string {
	return placeholder + "::uuid"
}

func (postgresDialect) SupportsReturning() bool { return true }
