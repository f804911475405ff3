package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a Postgres
// connection.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Connect opens a Postgres handle, verifies connectivity with a ping, and
// applies the schema. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := Migrate(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema is idempotent: every statement is IF NOT EXISTS. Uniqueness
// constraints are the ledger's duplicate-prevention mechanism; the services
// never rely on check-then-insert.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		avatar        TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'student',
		coins         BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
		xp            BIGINT NOT NULL DEFAULT 0 CHECK (xp >= 0),
		level         INT NOT NULL DEFAULT 1,
		streak        INT NOT NULL DEFAULT 0,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_xp ON accounts (xp DESC, id ASC)`,

	`CREATE TABLE IF NOT EXISTS items (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price       BIGINT NOT NULL CHECK (price >= 0),
		category    TEXT NOT NULL,
		icon        TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT 'General',
		price      BIGINT NOT NULL DEFAULT 0 CHECK (price >= 0),
		credits    INT NOT NULL DEFAULT 1,
		creator_id TEXT REFERENCES accounts(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_creator ON courses (creator_id)`,

	`CREATE TABLE IF NOT EXISTS owned_items (
		user_id     TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		item_id     TEXT NOT NULL REFERENCES items(id),
		quantity    INT NOT NULL DEFAULT 1,
		acquired_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS enrollments (
		user_id     TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		course_id   TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		enrolled_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, course_id)
	)`,

	`CREATE TABLE IF NOT EXISTS certificates (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		course_title TEXT NOT NULL,
		code         TEXT NOT NULL UNIQUE,
		issued_on    TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, course_title)
	)`,

	`CREATE TABLE IF NOT EXISTS progress (
		user_id      TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		course_id    TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		score        INT NOT NULL DEFAULT 0,
		status       TEXT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, course_id)
	)`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}

// pq error codes the repositories care about.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// mapStoreErr converts transport-level failures into ErrStoreUnavailable so
// callers can distinguish "the database said no" from "the database is
// gone". The ledger never substitutes fabricated data on the latter.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
