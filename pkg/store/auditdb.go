// pkg/store/auditdb.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/borealfield/surveyqc/pkg/audit"
)

// AuditDB accumulates normalized audit events in a local SQLite file
// so decisions stay queryable across runs and seasons. It supplements
// the per-pass CSV logs, which remain the canonical record.
type AuditDB struct {
	db     *sqlx.DB
	logger *zap.Logger
}

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL,
		pass TEXT NOT NULL,
		row_idx INTEGER NOT NULL,
		site TEXT,
		field TEXT NOT NULL,
		original TEXT,
		kind TEXT,
		direction TEXT,
		action TEXT,
		result TEXT,
		note TEXT,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// OpenAuditDB opens (creating if needed) the audit database at path
// and ensures the events table exists.
func OpenAuditDB(path string, logger *zap.Logger) (*AuditDB, error) {
	if path == "" {
		return nil, errors.New("audit database path cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if _, err := db.Exec(createEventsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit_events table: %w", err)
	}

	logger.Info("Ensured audit_events table exists", zap.String("path", path))
	return &AuditDB{db: db, logger: logger}, nil
}

// RecordEvents batch inserts events in one transaction.
func (a *AuditDB) RecordEvents(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				a.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO audit_events
		(run_id, dataset, pass, row_idx, site, field, original, kind, direction, action, result, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err = stmt.ExecContext(ctx,
			ev.RunID,
			ev.Dataset,
			ev.Pass,
			ev.RowIndex,
			ev.Site,
			ev.Field,
			ev.Original,
			ev.Kind,
			ev.Direction,
			ev.Action,
			ev.Result,
			ev.Note,
		); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit events: %w", err)
	}

	a.logger.Info("Recorded audit events", zap.Int("count", len(events)))
	return nil
}

// EventCount returns how many events a run recorded.
func (a *AuditDB) EventCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := a.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM audit_events WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return n, nil
}

// EventsForRun returns a run's events in insertion order.
func (a *AuditDB) EventsForRun(ctx context.Context, runID string) ([]audit.Event, error) {
	var events []audit.Event
	err := a.db.SelectContext(ctx, &events, `
		SELECT run_id, dataset, pass, row_idx, site, field, original, kind, direction, action, result, note
		FROM audit_events
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit events: %w", err)
	}
	return events, nil
}

// Close closes the underlying database.
func (a *AuditDB) Close() error {
	return a.db.Close()
}
