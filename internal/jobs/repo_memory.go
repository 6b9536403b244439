package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-receptionist/internal/calls"
)

// MemoryStore keeps records in process. Used for local runs and tests.
type MemoryStore struct {
	mu        sync.Mutex
	byID      map[string]calls.JobRecord
	byCallSid map[string]string
	clock     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]calls.JobRecord),
		byCallSid: make(map[string]string),
		clock:     time.Now,
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, rec calls.JobRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byCallSid[rec.CallSid]; ok {
		return id, ErrDuplicateCall
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock().UTC()
	}
	s.byID[rec.ID] = rec
	s.byCallSid[rec.CallSid] = rec.ID
	return rec.ID, nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (calls.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return calls.JobRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) FindByCallSid(ctx context.Context, callSid string) (calls.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCallSid[callSid]
	if !ok {
		return calls.JobRecord{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) ListByContractor(ctx context.Context, contractorID string, limit int) ([]calls.JobRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.Lock()
	var out []calls.JobRecord
	for _, rec := range s.byID {
		if rec.ContractorID == contractorID {
			out = append(out, rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
