package audit

import (
	"context"
	"database/sql"

	"ai-receptionist/pkg/utils"
)

// SQLRepo appends events to the audit_events table. No update or delete
// statements exist for it.
type SQLRepo struct {
	db     *sql.DB
	driver string
}

func NewSQLRepo(db *sql.DB, driver string) *SQLRepo {
	return &SQLRepo{db: db, driver: driver}
}

func (r *SQLRepo) Migrate(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if r.driver == utils.DriverSQLite {
		ts = "TIMESTAMP"
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS audit_events (
  id            TEXT PRIMARY KEY,
  call_sid      TEXT NOT NULL,
  type          TEXT NOT NULL,
  contractor_id TEXT NOT NULL DEFAULT '',
  job_id        TEXT NOT NULL DEFAULT '',
  message       TEXT NOT NULL DEFAULT '',
  metadata      TEXT NOT NULL DEFAULT '',
  created_at    `+ts+` NOT NULL
)`)
	return err
}

func (r *SQLRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, call_sid, type, contractor_id, job_id, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, utils.Rebind(r.driver, q),
		e.ID,
		e.CallSid,
		string(e.Type),
		e.ContractorID,
		e.JobID,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
