package scan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Run is one row of run history: what a scan covered and what it
// produced. History only — runs are never resumed.
type Run struct {
	ID            string
	TenantID      string
	Workers       int
	MaxDepth      int
	StartedAt     time.Time
	FinishedAt    time.Time
	Users         int
	Sites         int
	UserDriveRows int64
	SiteDriveRows int64
	FileRows      int64
}

// Ledger records scan runs in a local SQLite database.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenLedger opens (or creates) the run-history database at dbPath and
// applies pending migrations.
func OpenLedger(dbPath string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// DSN parameters ensure pragmas apply to every connection.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("scan: opening ledger %s: %w", dbPath, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db, logger: logger}, nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// RecordRun inserts one completed run.
func (l *Ledger) RecordRun(ctx context.Context, run *Run) error {
	const q = `INSERT INTO runs
		(id, tenant_id, workers, max_depth, started_at, finished_at,
		 users, sites, user_drive_rows, site_drive_rows, file_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, q,
		run.ID, run.TenantID, run.Workers, run.MaxDepth,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339),
		run.Users, run.Sites, run.UserDriveRows, run.SiteDriveRows, run.FileRows,
	)
	if err != nil {
		return fmt.Errorf("scan: recording run %s: %w", run.ID, err)
	}

	l.logger.Debug("run recorded",
		slog.String("run_id", run.ID),
	)

	return nil
}

// ListRuns returns the most recent runs, newest first.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	const q = `SELECT id, tenant_id, workers, max_depth, started_at, finished_at,
		users, sites, user_drive_rows, site_drive_rows, file_rows
		FROM runs ORDER BY started_at DESC LIMIT ?`

	rows, err := l.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("scan: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var r Run

		var started, finished string

		err := rows.Scan(&r.ID, &r.TenantID, &r.Workers, &r.MaxDepth, &started, &finished,
			&r.Users, &r.Sites, &r.UserDriveRows, &r.SiteDriveRows, &r.FileRows)
		if err != nil {
			return nil, fmt.Errorf("scan: scanning run row: %w", err)
		}

		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan: iterating run rows: %w", err)
	}

	return runs, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
