// Package tracestore archives drained timing records to a SQLite file for
// offline inspection by the replay tooling.
//
// The engine itself never reads this store: a document's state dies with
// the document. The archive exists so a replay run can be queried after
// the fact with plain SQL.
package tracestore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

// Store wraps the SQLite archive.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the archive at path and ensures the schema.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open trace archive: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS records(
	  id              INTEGER PRIMARY KEY,
	  doc_id          TEXT    NOT NULL,
	  event_type      TEXT    NOT NULL,
	  entry_kind      TEXT    NOT NULL CHECK (entry_kind IN ('event','first-input')),
	  start_ms        REAL    NOT NULL,
	  processing_start_ms REAL NOT NULL,
	  processing_end_ms   REAL NOT NULL,
	  duration_ms     REAL    NOT NULL,
	  cancelable      INTEGER NOT NULL,
	  interaction_id  INTEGER NOT NULL,
	  source_id       TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_doc  ON records(doc_id);
	CREATE INDEX IF NOT EXISTS idx_records_type ON records(event_type);
	CREATE INDEX IF NOT EXISTS idx_records_interaction ON records(interaction_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create archive tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one archived row.
type Record struct {
	DocID             string
	EventType         string
	EntryKind         string
	StartMS           float64
	ProcessingStartMS float64
	ProcessingEndMS   float64
	DurationMS        float64
	Cancelable        bool
	InteractionID     uint64
	SourceID          string
}

// Archive inserts a batch of records for one document in a transaction.
func (s *Store) Archive(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO records(
		doc_id, event_type, entry_kind, start_ms,
		processing_start_ms, processing_end_ms, duration_ms,
		cancelable, interaction_id, source_id
	) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		cancelable := 0
		if r.Cancelable {
			cancelable = 1
		}
		if _, err := stmt.Exec(
			r.DocID, r.EventType, r.EntryKind, r.StartMS,
			r.ProcessingStartMS, r.ProcessingEndMS, r.DurationMS,
			cancelable, int64(r.InteractionID), r.SourceID, //nolint:gosec // ids fit in int64 in practice; SQLite has no unsigned type
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountByDoc returns how many records are archived for a document.
func (s *Store) CountByDoc(docID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE doc_id = ?`, docID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// MS converts an engine duration to archive milliseconds.
func MS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
