package reporting

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/darwinml/darwin-go/pkg/errors"
)

const generationLogSchema = `
CREATE TABLE IF NOT EXISTS generation_log (
	run_id           TEXT NOT NULL,
	generation       INTEGER NOT NULL,
	individual_index INTEGER NOT NULL,
	fenotype         TEXT NOT NULL,
	depth            INTEGER NOT NULL,
	size             INTEGER NOT NULL,
	evaluation       TEXT NOT NULL,
	PRIMARY KEY (run_id, generation, individual_index)
);
CREATE INDEX IF NOT EXISTS idx_generation_log_run ON generation_log(run_id, generation);
`

// SQLite persists generation records to a local SQLite database, one row per
// individual per generation, keyed by run ID so several experiments can share
// a file.
type SQLite struct {
	db    *sql.DB
	runID string
}

// NewSQLite opens (or creates) the database at path and prepares the
// generation_log table.
func NewSQLite(path, runID string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ReportingFailed, "opening sqlite database")
	}

	if _, err := db.Exec(generationLogSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ReportingFailed, "initializing generation_log table")
	}

	// WAL keeps readers (e.g. a live dashboard) from blocking the run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ReportingFailed, "enabling WAL mode")
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ReportingFailed, "setting synchronous pragma")
	}

	return &SQLite{db: db, runID: runID}, nil
}

func (s *SQLite) ReportGeneration(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ReportingFailed, "starting report transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO generation_log
		(run_id, generation, individual_index, fenotype, depth, size, evaluation)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.ReportingFailed, "preparing insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, s.runID, r.Generation, r.Index,
			r.Fenotype, r.Depth, r.Size, fmt.Sprintf("%v", r.Evaluation)); err != nil {
			tx.Rollback()
			return errors.WithFields(
				errors.Wrap(err, errors.ReportingFailed, "inserting generation record"),
				errors.Fields{"generation": r.Generation, "individual_index": r.Index})
		}
	}

	return errors.Wrap(tx.Commit(), errors.ReportingFailed, "committing generation records")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
