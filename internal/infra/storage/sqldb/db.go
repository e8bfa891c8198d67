package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres via database/sql
	_ "modernc.org/sqlite"             // cgo-free sqlite driver
)

func init() {
	// modernc registers as "sqlite", which sqlx's bind table doesn't know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Config holds PostgreSQL connection configuration. Leave URL empty to use
// the sqlite backend instead.
type Config struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// DB wraps an sqlx connection to either backend.
type DB struct {
	*sqlx.DB
	dialect string
}

// NewPostgres opens a PostgreSQL-backed ledger database and applies pending
// migrations.
func NewPostgres(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	return finishOpen(ctx, db, "postgres")
}

// NewSQLite opens (creating if needed) a sqlite-backed ledger database at
// the given path and applies pending migrations.
func NewSQLite(ctx context.Context, path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// between per-chain watchers.
	db.SetMaxOpenConns(1)

	return finishOpen(ctx, db, "sqlite3")
}

func finishOpen(ctx context.Context, db *sqlx.DB, dialect string) (*DB, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db.DB, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}
