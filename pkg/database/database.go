package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver       string        `envconfig:"DRIVER" default:"postgres"`
	DSN          string        `envconfig:"DSN" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	Debug        bool          `envconfig:"DEBUG" default:"false"`
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Driver)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("database: dsn is required")
	}
	return nil
}

// Open returns a bun DB for the configured driver.
func Open(cfg Config) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(cfg.DSN),
			pgdriver.WithDialTimeout(cfg.DialTimeout),
		))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("database: open sqlite: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.Debug {
		db.AddQueryHook(queryLogHook{})
	}
	return db, nil
}

func MustOpen(cfg Config) *bun.DB {
	db, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return db
}

// queryLogHook writes every executed query at debug level.
type queryLogHook struct{}

func (queryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	evt := log.Debug()
	if event.Err != nil && event.Err != sql.ErrNoRows {
		evt = log.Warn().Err(event.Err)
	}
	evt.Str("operation", event.Operation()).
		Dur("elapsed", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("db query")
}
