package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open connects to dsn and migrates the schema. DSNs starting with
// postgres:// or postgresql:// use Postgres; anything else is treated as
// a SQLite path or URI.
func Open(dsn string) (*Store, error) {
	driverName, dialectName, source := resolveDriver(dsn)

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(dialectName, db)
	if err := migrate(ctx, drv); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv, dialect: dialectName}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name ("sqlite3" or "postgres").
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Students() StudentRepo       { return &studentRepo{s: s} }
func (s *Store) Curriculum() CurriculumRepo  { return &curriculumRepo{s: s} }
func (s *Store) Problems() ProblemRepo       { return &problemRepo{s: s} }
func (s *Store) Weaknesses() WeaknessRepo    { return &weaknessRepo{s: s} }
func (s *Store) Submissions() SubmissionRepo { return &submissionRepo{s: s} }
func (s *Store) Mastery() MasteryRepo        { return &masteryRepo{s: s} }
func (s *Store) Events() *LLMEventRepo       { return &LLMEventRepo{s: s} }

// builder returns an ent SQL builder bound to the store's dialect so
// placeholders come out as ? or $n as required.
func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// inTx runs fn inside a transaction, rolling back when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func resolveDriver(dsn string) (driverName, dialectName, source string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dialect.Postgres, dsn
	}
	return "sqlite", dialect.SQLite, withPragmas(dsn)
}

// withPragmas appends the connection pragmas modernc applies to every
// pooled connection. foreign_keys must be on for ent's SQLite migrator.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. MATHDAILY_DB environment variable
// 2. $XDG_DATA_HOME/mathdaily/mathdaily.db
// 3. ~/.local/share/mathdaily/mathdaily.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHDAILY_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mathdaily", "mathdaily.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
