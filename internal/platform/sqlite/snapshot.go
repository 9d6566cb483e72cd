// Package sqlite persists the vocabulary store as a single versioned JSON
// document in a local SQLite database. The store itself stays in memory; this
// layer only loads the document at startup and writes it back on change.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/lexiflow/lexiflow/internal/store"
)

// snapshotName keys the single persisted document.
const snapshotName = "primary"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name           TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	document       TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);`

// ErrSchemaVersion is returned when a persisted document carries a schema
// version this build does not understand. Migration happens out of band; the
// store never guesses.
var ErrSchemaVersion = errors.New("unsupported snapshot schema version")

// SnapshotStore reads and writes the persisted state document.
type SnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSnapshotStore opens (creating if needed) the database at path.
func NewSnapshotStore(path string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer suits both SQLite and the one-document access pattern.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SnapshotStore{
		db:     db,
		logger: logger.With("component", "snapshot_store"),
	}, nil
}

// Load returns the persisted snapshot, or (nil, nil) when none has been
// saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (*store.Snapshot, error) {
	var (
		version  int
		document string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT schema_version, document FROM snapshots WHERE name = ?`, snapshotName,
	).Scan(&version, &document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if version != store.SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, version, store.SchemaVersion)
	}

	var snap store.Snapshot
	if err := json.Unmarshal([]byte(document), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	s.logger.Info("snapshot loaded",
		"words", len(snap.Words),
		"categories", len(snap.Categories))

	return &snap, nil
}

// Save writes the snapshot, replacing any previous document.
func (s *SnapshotStore) Save(ctx context.Context, snap *store.Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}

	document, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, schema_version, document, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			schema_version = excluded.schema_version,
			document       = excluded.document,
			updated_at     = excluded.updated_at`,
		snapshotName, snap.SchemaVersion, string(document), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved", "bytes", len(document))
	return nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
