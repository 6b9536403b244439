package jobs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"ai-receptionist/internal/calls"
	"ai-receptionist/pkg/utils"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLStore(db, utils.DriverSQLite)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func privateJob(callSid string, at time.Time) calls.JobRecord {
	name := "Dana"
	conf := 0.85
	return calls.JobRecord{
		ContractorID: "c-1",
		CallSid:      callSid,
		Source:       calls.SourceAIReceptionist,
		Status:       calls.JobStatusNew,
		CreatedAt:    at,
		CallerPhone:  "+15551234567",
		CallerName:   &name,
		IssueType:    calls.IssueRepair,
		Urgency:      calls.UrgencyHigh,
		Description:  "leaking sink",
		Confidence:   &conf,
		Transcript:   "my sink is leaking",
	}
}

func TestSQLStore_CreateAndGet(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.CreateJob(ctx, privateJob("CA1", at))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	got, err := s.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != calls.JobStatusNew || got.IssueType != calls.IssueRepair || got.CallSid != "CA1" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.CallerName == nil || *got.CallerName != "Dana" || got.Address != nil {
		t.Fatalf("unexpected nullable fields: %+v", got)
	}
	if got.Confidence == nil || *got.Confidence != 0.85 {
		t.Fatalf("expected confidence")
	}
	if !got.CreatedAt.Equal(at) {
		t.Fatalf("expected created_at %s, got %s", at, got.CreatedAt)
	}
}

func TestSQLStore_DuplicateCallSidReturnsExistingID(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	first, err := s.CreateJob(ctx, privateJob("CA1", time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateJob(ctx, privateJob("CA1", time.Now()))
	if !errors.Is(err, ErrDuplicateCall) {
		t.Fatalf("expected ErrDuplicateCall, got %v", err)
	}
	if second != first {
		t.Fatalf("expected existing id %s, got %s", first, second)
	}
}

func TestSQLStore_ListNewestFirst(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, sid := range []string{"CA1", "CA2", "CA3"} {
		if _, err := s.CreateJob(ctx, privateJob(sid, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := privateJob("CA4", base)
	other.ContractorID = "c-2"
	if _, err := s.CreateJob(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ListByContractor(ctx, "c-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].CallSid != "CA3" || got[1].CallSid != "CA2" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestSQLStore_MissedRecordHasNoExtraction(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	id, err := s.CreateJob(ctx, calls.JobRecord{
		ContractorID: "c-1",
		CallSid:      "CA9",
		Source:       calls.SourceAIReceptionist,
		Status:       calls.JobStatusMissed,
		CallerPhone:  "+15551234567",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.FindByCallSid(ctx, "CA9")
	if err != nil || got.ID != id {
		t.Fatalf("find: %+v %v", got, err)
	}
	if got.Confidence != nil || got.IssueType != "" || got.Transcript != "" {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
}

func TestSQLStore_NotFound(t *testing.T) {
	s := openSQLite(t)
	if _, err := s.GetJob(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_ClosedDBIsUnavailable(t *testing.T) {
	s := openSQLite(t)
	_ = s.db.Close()
	if _, err := s.CreateJob(context.Background(), privateJob("CA1", time.Now())); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
