// Package sqlsink durably appends one row per captured frame to a local
// SQL database, for offline querying after a capture session ends. The
// default driver is SQLite for a zero-infrastructure deployment; any
// database/sql driver sqlx supports works behind the same Sink.
package sqlsink

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"go.uber.org/zap"

	"github.com/sofiworker/pktcore/gnet/frame"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS frames (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	captured_at TEXT NOT NULL,
	length      INTEGER NOT NULL,
	layer_count INTEGER NOT NULL,
	entry_file  TEXT
)`

const insertSQL = `INSERT INTO frames (captured_at, length, layer_count, entry_file) VALUES (?, ?, ?, ?)`

// Sink appends one row per delivered frame to a sqlx-backed database.
type Sink struct {
	logger *zap.Logger
	db     *sqlx.DB
}

// Open opens driverName/dsn (e.g. "sqlite3", "./capture.db") and ensures
// the frames table exists.
func Open(driverName, dsn string, logger *zap.Logger) (*Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Sink{logger: logger, db: db}, nil
}

// New wraps an already-open *sqlx.DB without issuing the CREATE TABLE
// statement, for tests that drive the Sink against a mocked database.
func New(db *sqlx.DB, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger, db: db}
}

// Callback is a gnet/sniffer.Callback that inserts one row per frame.
// Insert failures are logged, never propagated: a database hiccup must
// never stall the capture pipeline.
func (s *Sink) Callback(raw frame.RawFrame, parsed frame.ParsedPacket) {
	if err := s.Insert(context.Background(), raw, parsed); err != nil {
		s.logger.Warn("sqlsink: insert failed", zap.Error(err))
	}
}

// Insert writes one row for raw/parsed.
func (s *Sink) Insert(ctx context.Context, raw frame.RawFrame, parsed frame.ParsedPacket) error {
	var entryFile string
	if len(parsed) > 0 {
		entryFile = parsed[0].SourceFile
	}
	_, err := s.db.ExecContext(ctx, insertSQL,
		raw.Timestamp.Format(time.RFC3339Nano), raw.Length, len(parsed), entryFile)
	return err
}

// Close closes the underlying database handle.
func (s *Sink) Close() error {
	return s.db.Close()
}
