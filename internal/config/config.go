package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the process configuration, read from the environment
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"3001"`
	JWTSecret   string `envconfig:"JWT_SECRET"`

	Database  DatabaseConfig  `ignored:"true"`
	Migration MigrationConfig `ignored:"true"`
	Repair    RepairConfig    `ignored:"true"`
}

// DatabaseConfig selects the SQL backend and how to reach it
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"mysql"`
	Host     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	Port     int    `envconfig:"DB_PORT" default:"4000"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"lendingops"`
	TLS      bool   `envconfig:"DB_TLS" default:"false"`
	// URL overrides the individual settings when set
	URL string `envconfig:"DB_URL"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// MigrationConfig controls the schema description file and the external tool
type MigrationConfig struct {
	SchemaPath  string        `envconfig:"MIGRATION_SCHEMA_PATH" default:"db/schema.sql"`
	WorkDir     string        `envconfig:"MIGRATION_WORKDIR" default:"."`
	DiffCmd     string        `envconfig:"MIGRATION_DIFF_CMD" default:"atlas migrate diff {name} --dir file://db/migrations --to file://db/schema.sql --dev-url docker://mysql/8/dev"`
	GenerateCmd string        `envconfig:"MIGRATION_GENERATE_CMD" default:"sqlc generate"`
	ApplyCmd    string        `envconfig:"MIGRATION_APPLY_CMD" default:"atlas migrate apply --dir file://db/migrations --env local"`
	LockTimeout time.Duration `envconfig:"MIGRATION_LOCK_TIMEOUT" default:"2m"`
	StepTimeout time.Duration `envconfig:"MIGRATION_STEP_TIMEOUT" default:"5m"`
}

// RepairConfig schedules the catalog verification job
type RepairConfig struct {
	// Schedule is a cron expression; empty disables the job
	Schedule     string        `envconfig:"REPAIR_SCHEDULE" default:"@every 15m"`
	PendingGrace time.Duration `envconfig:"REPAIR_PENDING_GRACE" default:"30m"`
	AutoRepair   bool          `envconfig:"REPAIR_AUTO" default:"true"`
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load(envFiles...)

	var cfg Config
	// Sections are processed separately so every variable is looked up by its
	// full name only.
	for _, section := range []any{&cfg, &cfg.Database, &cfg.Migration, &cfg.Repair} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether verbose diagnostics may be exposed
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, "test":
	default:
		return fmt.Errorf("APP_ENV must be development, production or test, got %q", c.Environment)
	}

	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "tidb", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, tidb or postgres, got %q", c.Database.Driver)
	}

	if c.Migration.SchemaPath == "" {
		return fmt.Errorf("MIGRATION_SCHEMA_PATH is required")
	}
	if c.Migration.LockTimeout <= 0 || c.Migration.StepTimeout <= 0 {
		return fmt.Errorf("migration timeouts must be positive")
	}
	for name, cmd := range map[string]string{
		"MIGRATION_DIFF_CMD":     c.Migration.DiffCmd,
		"MIGRATION_GENERATE_CMD": c.Migration.GenerateCmd,
		"MIGRATION_APPLY_CMD":    c.Migration.ApplyCmd,
	} {
		if strings.TrimSpace(cmd) == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

// DSN builds the driver connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	if strings.EqualFold(d.Driver, "postgres") {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:   "/" + d.Name,
		}
		q := url.Values{}
		if d.TLS {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.Collation = "utf8mb4_unicode_ci"
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if d.TLS {
		mc.TLSConfig = "tidb"
	}
	return mc.FormatDSN()
}
