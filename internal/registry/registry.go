// Package registry owns the workspace registry: a single SQLite
// database, shared across every project under a Codex home directory,
// tracking which daemon is serving which project hash so the
// supervisor can sweep stale entries without touching their
// persisted index snapshots.
package registry

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS workspaces (
    project_hash  TEXT PRIMARY KEY,
    root_path     TEXT NOT NULL,
    pid           INTEGER NOT NULL,
    port          INTEGER NOT NULL,
    started_at    TEXT NOT NULL,
    last_seen_at  TEXT NOT NULL
);
`

// Workspace is one row of the workspaces table.
type Workspace struct {
	ProjectHash string
	RootPath    string
	PID         int
	Port        int
	StartedAt   time.Time
	LastSeenAt  time.Time
}

// Registry wraps the shared registry.db connection.
type Registry struct {
	db *sql.DB
}

// Open opens (creating if necessary) the registry database at path
// and ensures its schema exists.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating registry schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Register upserts a workspace row for a freshly spawned (or
// reused) daemon.
func (r *Registry) Register(ws Workspace) error {
	now := time.Now().UTC()
	if ws.StartedAt.IsZero() {
		ws.StartedAt = now
	}
	if ws.LastSeenAt.IsZero() {
		ws.LastSeenAt = now
	}

	_, err := sq.Insert("workspaces").
		Columns("project_hash", "root_path", "pid", "port", "started_at", "last_seen_at").
		Values(ws.ProjectHash, ws.RootPath, ws.PID, ws.Port, format(ws.StartedAt), format(ws.LastSeenAt)).
		Options("OR REPLACE").
		RunWith(r.db).
		Exec()
	if err != nil {
		return fmt.Errorf("registering workspace %s: %w", ws.ProjectHash, err)
	}
	return nil
}

// Touch sets last_seen_at to now for hash's existing row, leaving
// every other column untouched; it inserts nothing if no row exists.
func (r *Registry) Touch(hash string) error {
	_, err := sq.Update("workspaces").
		Set("last_seen_at", format(time.Now().UTC())).
		Where(sq.Eq{"project_hash": hash}).
		RunWith(r.db).
		Exec()
	if err != nil {
		return fmt.Errorf("touching workspace %s: %w", hash, err)
	}
	return nil
}

// Get returns the workspace row for hash.
func (r *Registry) Get(hash string) (Workspace, bool, error) {
	row := sq.Select("project_hash", "root_path", "pid", "port", "started_at", "last_seen_at").
		From("workspaces").
		Where(sq.Eq{"project_hash": hash}).
		RunWith(r.db).
		QueryRow()

	ws, err := scanWorkspace(row)
	if err == sql.ErrNoRows {
		return Workspace{}, false, nil
	}
	if err != nil {
		return Workspace{}, false, fmt.Errorf("reading workspace %s: %w", hash, err)
	}
	return ws, true, nil
}

// Forget deletes a workspace row, e.g. once its daemon process is
// confirmed gone.
func (r *Registry) Forget(hash string) error {
	_, err := sq.Delete("workspaces").
		Where(sq.Eq{"project_hash": hash}).
		RunWith(r.db).
		Exec()
	if err != nil {
		return fmt.Errorf("forgetting workspace %s: %w", hash, err)
	}
	return nil
}

// Sweep returns every workspace whose last_seen_at is older than
// maxAge. It does not delete rows or touch index.bin; a row stays
// until Forget is called for it. cmd/navd's sweep loop only logs the
// stale workspaces it gets back and evicts nothing.
func (r *Registry) Sweep(maxAge time.Duration) ([]Workspace, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := sq.Select("project_hash", "root_path", "pid", "port", "started_at", "last_seen_at").
		From("workspaces").
		Where(sq.Lt{"last_seen_at": format(cutoff)}).
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("sweeping registry: %w", err)
	}
	defer rows.Close()

	var stale []Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stale workspace: %w", err)
		}
		stale = append(stale, ws)
	}
	return stale, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkspace(row rowScanner) (Workspace, error) {
	var ws Workspace
	var startedAt, lastSeenAt string
	if err := row.Scan(&ws.ProjectHash, &ws.RootPath, &ws.PID, &ws.Port, &startedAt, &lastSeenAt); err != nil {
		return Workspace{}, err
	}
	var err error
	if ws.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return Workspace{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if ws.LastSeenAt, err = time.Parse(time.RFC3339, lastSeenAt); err != nil {
		return Workspace{}, fmt.Errorf("parsing last_seen_at: %w", err)
	}
	return ws, nil
}

func format(t time.Time) string {
	return t.Format(time.RFC3339)
}
