package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-receptionist/internal/calls"
	"ai-receptionist/pkg/utils"
)

// SQLStore persists records in a job_records table. driver is
// utils.DriverPostgres or utils.DriverSQLite; queries are written with $n
// placeholders and rebound for sqlite.
type SQLStore struct {
	db     *sql.DB
	driver string
	clock  func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, clock: time.Now}
}

func (s *SQLStore) schema() []string {
	tsType, floatType := "TIMESTAMPTZ", "DOUBLE PRECISION"
	if s.driver == utils.DriverSQLite {
		tsType, floatType = "TIMESTAMP", "REAL"
	}
	return []string{
		`
CREATE TABLE IF NOT EXISTS job_records (
  id              TEXT PRIMARY KEY,
  contractor_id   TEXT NOT NULL,
  call_sid        TEXT NOT NULL UNIQUE,
  source          TEXT NOT NULL,
  status          TEXT NOT NULL,
  created_at      ` + tsType + ` NOT NULL,
  caller_phone    TEXT NOT NULL,
  caller_name     TEXT,
  issue_type      TEXT NOT NULL DEFAULT '',
  urgency         TEXT NOT NULL DEFAULT '',
  address         TEXT,
  description     TEXT NOT NULL DEFAULT '',
  estimated_scope TEXT,
  confidence      ` + floatType + `,
  transcript      TEXT NOT NULL DEFAULT '',
  recording_url   TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS job_records_contractor_created_idx ON job_records (contractor_id, created_at DESC)`,
	}
}

// Migrate creates the schema if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range s.schema() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("jobs: migrate: %w", err)
			}
		}
		return nil
	})
}

const recordColumns = `id, contractor_id, call_sid, source, status, created_at, caller_phone, caller_name,
  issue_type, urgency, address, description, estimated_scope, confidence, transcript, recording_url`

func (s *SQLStore) CreateJob(ctx context.Context, rec calls.JobRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	q := `
INSERT INTO job_records (` + recordColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (call_sid) DO NOTHING
`
	res, err := s.db.ExecContext(ctx, s.rebind(q),
		rec.ID,
		rec.ContractorID,
		rec.CallSid,
		rec.Source,
		string(rec.Status),
		rec.CreatedAt,
		rec.CallerPhone,
		rec.CallerName,
		string(rec.IssueType),
		string(rec.Urgency),
		rec.Address,
		rec.Description,
		rec.EstimatedScope,
		rec.Confidence,
		rec.Transcript,
		rec.RecordingURL,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert: %v", ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%w: rows affected: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		existing, err := s.FindByCallSid(ctx, rec.CallSid)
		if err != nil {
			return "", err
		}
		return existing.ID, ErrDuplicateCall
	}
	return rec.ID, nil
}

func (s *SQLStore) GetJob(ctx context.Context, id string) (calls.JobRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM job_records WHERE id = $1`
	return s.queryOne(ctx, q, id)
}

func (s *SQLStore) FindByCallSid(ctx context.Context, callSid string) (calls.JobRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM job_records WHERE call_sid = $1`
	return s.queryOne(ctx, q, callSid)
}

func (s *SQLStore) ListByContractor(ctx context.Context, contractorID string, limit int) ([]calls.JobRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := `
SELECT ` + recordColumns + `
FROM job_records
WHERE contractor_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := s.db.QueryContext(ctx, s.rebind(q), contractorID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []calls.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStoreUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *SQLStore) queryOne(ctx context.Context, q string, arg any) (calls.JobRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, s.rebind(q), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calls.JobRecord{}, ErrNotFound
		}
		return calls.JobRecord{}, fmt.Errorf("%w: query: %v", ErrStoreUnavailable, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (calls.JobRecord, error) {
	var (
		rec        calls.JobRecord
		status     string
		issueType  string
		urgency    string
		name       sql.NullString
		address    sql.NullString
		scope      sql.NullString
		confidence sql.NullFloat64
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ContractorID,
		&rec.CallSid,
		&rec.Source,
		&status,
		&rec.CreatedAt,
		&rec.CallerPhone,
		&name,
		&issueType,
		&urgency,
		&address,
		&rec.Description,
		&scope,
		&confidence,
		&rec.Transcript,
		&rec.RecordingURL,
	); err != nil {
		return calls.JobRecord{}, err
	}
	rec.Status = calls.JobStatus(status)
	rec.IssueType = calls.IssueType(issueType)
	rec.Urgency = calls.Urgency(urgency)
	rec.CallerName = nullableString(name)
	rec.Address = nullableString(address)
	rec.EstimatedScope = nullableString(scope)
	if confidence.Valid {
		c := confidence.Float64
		rec.Confidence = &c
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (s *SQLStore) rebind(q string) string {
	return utils.Rebind(s.driver, q)
}
