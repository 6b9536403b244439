package jobs

import (
	"context"
	"errors"

	"ai-receptionist/internal/calls"
)

var (
	// ErrStoreUnavailable wraps any persistence failure.
	ErrStoreUnavailable = errors.New("jobs: store unavailable")
	// ErrDuplicateCall is returned with the existing id when a record for the
	// same CallSid already exists.
	ErrDuplicateCall = errors.New("jobs: duplicate call")
	ErrNotFound      = errors.New("jobs: not found")
)

// DefaultListLimit is used when ListByContractor is called with limit <= 0.
const DefaultListLimit = 50

// Store persists job records.
//
// CreateJob assigns an id when the record has none and returns it. At most
// one record exists per CallSid; a second insert returns the first record's
// id together with ErrDuplicateCall.
type Store interface {
	CreateJob(ctx context.Context, rec calls.JobRecord) (string, error)
	GetJob(ctx context.Context, id string) (calls.JobRecord, error)
	FindByCallSid(ctx context.Context, callSid string) (calls.JobRecord, error)
	// ListByContractor returns the newest records first.
	ListByContractor(ctx context.Context, contractorID string, limit int) ([]calls.JobRecord, error)
}
