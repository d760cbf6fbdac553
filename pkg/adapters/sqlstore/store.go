// Package sqlstore persists projects and field configuration in a SQL database.
// Projects are stored as JSON payloads next to their trimmed instrument columns.
// Those columns carry a unique index, so an instrument lookup is a single
// indexed query and two rows can never share an instrument.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const fieldConfigName = "default"

// Dialect captures the differences between supported databases.
type Dialect struct {
	Name   string
	Driver string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder func(n int) string
}

var (
	// SQLite uses the pure Go modernc driver.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite", Placeholder: func(int) string { return "?" }}
	// Postgres uses pgx through database/sql.
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

// DialectByName resolves "sqlite" or "postgres".
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
}

// bind rewrites '?' markers into the dialect's placeholders.
func (d Dialect) bind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store implements ports.Store on top of database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database, verifies the connection and applies the schema.
// For SQLite the DSN is a file path; parent directories are created.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dialect.Driver == SQLite.Driver {
		if dsn == "" {
			dsn = filepath.Join(".topicflow", "topicflow.db")
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Driver == SQLite.Driver {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}

	s, err := New(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection and applies the schema.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			instrument_type TEXT NOT NULL,
			instrument_revision TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + instrumentIndex + ` ON projects (instrument_type, instrument_revision)`,
		`CREATE TABLE IF NOT EXISTS field_config (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

const instrumentIndex = "projects_instrument_idx"

// writeError maps a violation of the instrument index to domain.ErrDuplicateInstrument.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == instrumentIndex {
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateInstrument)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(liteErr.Error(), "instrument_type") {
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateInstrument)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func instrumentColumns(i domain.Instrument) (string, string) {
	return strings.TrimSpace(i.Type), strings.TrimSpace(i.Revision)
}

// Create inserts a new project row.
func (s *Store) Create(ctx context.Context, project domain.Project) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	typ, rev := instrumentColumns(project.Instrument)
	_, err = s.db.ExecContext(ctx,
		s.dialect.bind(`INSERT INTO projects (id, instrument_type, instrument_revision, payload) VALUES (?, ?, ?, ?)`),
		project.ID, typ, rev, string(payload))
	if err != nil {
		return writeError("insert project", err)
	}
	return nil
}

func decodeProject(payload string) (domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return p, nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (domain.Project, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.dialect.bind(query), args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("select project: %w", err)
	}
	return decodeProject(payload)
}

// Get retrieves a project by ID.
func (s *Store) Get(ctx context.Context, id string) (domain.Project, error) {
	return s.queryOne(ctx, `SELECT payload FROM projects WHERE id = ?`, id)
}

// Update replaces an existing project row.
func (s *Store) Update(ctx context.Context, project domain.Project) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	typ, rev := instrumentColumns(project.Instrument)
	res, err := s.db.ExecContext(ctx,
		s.dialect.bind(`UPDATE projects SET instrument_type = ?, instrument_revision = ?, payload = ? WHERE id = ?`),
		typ, rev, string(payload), project.ID)
	if err != nil {
		return writeError("update project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.bind(`DELETE FROM projects WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// List returns every project ordered by ID.
func (s *Store) List(ctx context.Context) (projects []domain.Project, retErr error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	projects = []domain.Project{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p, err := decodeProject(payload)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// FindByInstrument looks the project up by its trimmed instrument columns.
func (s *Store) FindByInstrument(ctx context.Context, instrument domain.Instrument) (domain.Project, error) {
	typ, rev := instrumentColumns(instrument)
	return s.queryOne(ctx,
		`SELECT payload FROM projects WHERE instrument_type = ? AND instrument_revision = ? ORDER BY id LIMIT 1`,
		typ, rev)
}

// LoadFieldConfig reads the stored configuration. No row yields a zero value.
func (s *Store) LoadFieldConfig(ctx context.Context) (domain.FieldConfig, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.dialect.bind(`SELECT payload FROM field_config WHERE name = ?`), fieldConfigName).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FieldConfig{}, nil
	}
	if err != nil {
		return domain.FieldConfig{}, fmt.Errorf("select field config: %w", err)
	}

	var cfg domain.FieldConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return domain.FieldConfig{}, fmt.Errorf("decode field config: %w", err)
	}
	return cfg, nil
}

// SaveFieldConfig upserts the configuration row.
func (s *Store) SaveFieldConfig(ctx context.Context, cfg domain.FieldConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal field config: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		s.dialect.bind(`INSERT INTO field_config (name, payload) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET payload = excluded.payload`),
		fieldConfigName, string(payload))
	if err != nil {
		return fmt.Errorf("save field config: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
