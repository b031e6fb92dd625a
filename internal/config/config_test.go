package config

import (
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "mysql")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 4000, cfg.Database.Port)
	assert.Equal(t, "db/schema.sql", cfg.Migration.SchemaPath)
	assert.Equal(t, 2*time.Minute, cfg.Migration.LockTimeout)
	assert.Equal(t, "@every 15m", cfg.Repair.Schedule)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("MIGRATION_STEP_TIMEOUT", "45s")
	t.Setenv("REPAIR_SCHEDULE", "")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 45*time.Second, cfg.Migration.StepTimeout)
	assert.Empty(t, cfg.Repair.Schedule)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	tidb := DatabaseConfig{Driver: "mysql", Host: "db", Port: 4000, User: "root", Password: "pw", Name: "lending", TLS: true}
	dsn := tidb.DSN()
	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(db:4000)/lending?"), dsn)
	assert.Contains(t, dsn, "tls=tidb")

	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "app", Password: "pw", Name: "lending"}
	assert.Equal(t, "postgres://app:pw@db:5432/lending?sslmode=disable", pg.DSN())

	override := DatabaseConfig{Driver: "postgres", URL: "postgres://x"}
	assert.Equal(t, "postgres://x", override.DSN())
}

func TestDSN_MySQLPasswordWithReservedCharacters(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", Host: "db", Port: 4000, User: "app", Password: "p@ss/w:rd?x", Name: "lending"}

	parsed, err := mysql.ParseDSN(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "p@ss/w:rd?x", parsed.Passwd)
	assert.Equal(t, "db:4000", parsed.Addr)
	assert.Equal(t, "lending", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "utf8mb4_unicode_ci", parsed.Collation)
	assert.Equal(t, "utf8mb4", parsed.Params["charset"])
}
