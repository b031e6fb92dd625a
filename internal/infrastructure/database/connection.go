package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lendingops/backend/internal/config"
	"github.com/lendingops/backend/pkg/query"
)

// Connection pairs the shared *sql.DB pool with the dialect it speaks.
// sql.DB is safe for concurrent use and manages its own pool.
type Connection struct {
	db      *sql.DB
	dialect query.Dialect
}

var tlsOnce sync.Once

// Open connects to the configured backend and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Connection, error) {
	dialect, err := query.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	driver := "mysql"
	if dialect.Name() == query.DialectPostgres {
		driver = "pgx"
	} else if cfg.TLS {
		var regErr error
		tlsOnce.Do(func() {
			regErr = mysql.RegisterTLSConfig("tidb", &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: cfg.Host,
			})
		})
		if regErr != nil {
			return nil, fmt.Errorf("failed to register TLS config: %w", regErr)
		}
	}

	db, err := sql.Open(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db, dialect: dialect}, nil
}

// NewConnection wraps an existing pool, e.g. a sqlmock database in tests
func NewConnection(db *sql.DB, dialect query.Dialect) *Connection {
	return &Connection{db: db, dialect: dialect}
}

// DB returns the underlying pool
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect of the backend
func (c *Connection) Dialect() query.Dialect {
	return c.dialect
}

// Ping checks that the database is reachable
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the pool
func (c *Connection) Close() error {
	return c.db.Close()
}

const (
	mysqlDuplicateEntry     = 1062
	postgresUniqueViolation = "23505"
)

// IsDuplicateKey reports whether err is a unique constraint violation on
// either supported backend
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolation
	}
	return false
}
