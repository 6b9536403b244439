package receptionist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ai-receptionist/internal/audit"
	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/directory"
	"ai-receptionist/internal/extraction"
	"ai-receptionist/internal/jobs"
	"ai-receptionist/internal/notify"
	"ai-receptionist/pkg/logger"
)

// TranscriptSource is satisfied by *transcription.Acquirer.
type TranscriptSource interface {
	Acquire(ctx context.Context, ev calls.CallEvent) (string, bool)
}

// IntentExtractor is satisfied by *extraction.Extractor.
type IntentExtractor interface {
	Extract(ctx context.Context, transcript, callerPhone string, cc extraction.ContractorContext) extraction.Extraction
}

// Notifier is satisfied by *notify.Notifier.
type Notifier interface {
	Send(ctx context.Context, phone, jobID, contractorID string) notify.NotificationAttempt
}

// Metrics is satisfied by *metrics.Collector.
type Metrics interface {
	CallProcessed(outcome string)
	SMS(status string)
	ObservePipeline(d time.Duration)
}

// Deps are the collaborators of the pipeline. Audit, Metrics and
// Idempotency are optional.
type Deps struct {
	Directory   directory.Resolver
	Transcripts TranscriptSource
	Extractor   IntentExtractor
	Store       jobs.Store
	Notifier    Notifier
	Idempotency Idempotency
	Audit       *audit.Service
	Metrics     Metrics
}

// Policy holds the tunable thresholds.
type Policy struct {
	ConfidenceThreshold float64
	// Deadline bounds transcript acquisition plus extraction. Zero disables it.
	Deadline time.Duration
}

// Service turns one inbound call into exactly one job record.
// It is safe for concurrent use; calls share no mutable state beyond the
// idempotency cache and store.
type Service struct {
	deps   Deps
	policy Policy
	clock  func() time.Time
}

func NewService(deps Deps, policy Policy) *Service {
	return &Service{deps: deps, policy: policy, clock: time.Now}
}

// Process runs resolve, transcribe, extract, route and notify for ev.
//
// Errors are returned only for terminal conditions: an invalid event, an
// unknown contractor, directory or store failures. Provider failures degrade
// the outcome instead.
func (s *Service) Process(ctx context.Context, ev calls.CallEvent) (Result, error) {
	start := s.clock()
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	log := logger.From(ctx).With("call_sid", ev.CallSid)
	ctx = logger.With(ctx, log)

	if s.deps.Idempotency != nil {
		cached, ok, err := s.deps.Idempotency.Lookup(ctx, ev.CallSid)
		if err != nil {
			log.Warn("idempotency lookup failed", "error", err)
		} else if ok {
			log.Info("replayed call answered from cache", "job_id", cached.JobID)
			return cached, nil
		}
	}

	contractor, err := s.deps.Directory.Resolve(ctx, ev.To)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			log.Info("no contractor for dialed number", "to", ev.To)
			s.deps.Audit.Record(ctx, audit.EventContractorNotFound, ev.CallSid, "", "", "dialed "+ev.To, nil)
			s.callProcessed("contractor_not_found")
			return Result{}, ErrContractorNotFound
		}
		log.Error("contractor directory failed", "error", err)
		s.callProcessed("failed")
		return Result{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	log = log.With("contractor_id", contractor.ID)
	ctx = logger.With(ctx, log)

	transcript, hasTranscript, x := s.understand(ctx, ev, contractor)

	status, sms := route(hasTranscript, x.Confidence, s.policy.ConfidenceThreshold)
	rec := s.buildRecord(ev, contractor, status, transcript, x)

	jobID, err := s.deps.Store.CreateJob(ctx, rec)
	if errors.Is(err, jobs.ErrDuplicateCall) {
		log.Info("call already recorded", "job_id", jobID)
		existing, ferr := s.deps.Store.GetJob(ctx, jobID)
		if ferr != nil {
			existing.Status = rec.Status
		}
		return s.remember(ctx, ev.CallSid, Result{JobID: jobID, SMSStatus: replayStatus(existing.Status), Status: existing.Status}), nil
	}
	if err != nil {
		log.Error("job store failed", "error", err)
		s.callProcessed("failed")
		return Result{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	log = log.With("job_id", jobID)
	ctx = logger.With(ctx, log)

	if status == calls.JobStatusNew {
		attempt := s.deps.Notifier.Send(ctx, rec.CallerPhone, jobID, contractor.ID)
		sms = SMSFailed
		if attempt.Success {
			sms = SMSSent
		} else {
			s.deps.Audit.Record(ctx, audit.EventNotificationFailed, ev.CallSid, contractor.ID, jobID, "follow-up sms not delivered", nil)
		}
	}

	s.deps.Audit.Record(ctx, audit.EventJobCreated, ev.CallSid, contractor.ID, jobID, string(status), map[string]any{"sms_status": string(sms)})
	s.callProcessed(string(status))
	if s.deps.Metrics != nil {
		s.deps.Metrics.SMS(string(sms))
		s.deps.Metrics.ObservePipeline(s.clock().Sub(start))
	}
	log.LogAttrs(ctx, slog.LevelInfo, "call processed", slog.String("status", string(status)), slog.String("sms_status", string(sms)))

	return s.remember(ctx, ev.CallSid, Result{JobID: jobID, SMSStatus: sms, Status: status}), nil
}

// understand acquires a transcript and extracts intent under the pipeline
// deadline. If the deadline passes, the call is treated as having no
// transcript.
func (s *Service) understand(ctx context.Context, ev calls.CallEvent, c directory.Contractor) (string, bool, extraction.Extraction) {
	log := logger.From(ctx)
	stageCtx := ctx
	if s.policy.Deadline > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, s.policy.Deadline)
		defer cancel()
	}

	transcript, ok := s.deps.Transcripts.Acquire(stageCtx, ev)
	if !ok {
		if ev.RecordingURL != "" {
			s.deps.Audit.Record(ctx, audit.EventTranscriptionFailed, ev.CallSid, c.ID, "", "recording could not be transcribed", nil)
		}
		return "", false, extraction.Extraction{}
	}

	cc := extraction.ContractorContext{ContractorID: c.ID, Name: c.Name}
	recent, err := s.deps.Store.ListByContractor(stageCtx, c.ID, extraction.MaxRecentJobs)
	if err != nil {
		log.Warn("recent jobs unavailable for extraction context", "error", err)
	} else {
		cc.RecentJobs = recent
	}

	x := s.deps.Extractor.Extract(stageCtx, transcript, ev.From, cc)

	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Warn("pipeline deadline exceeded; recording as missed call", "deadline", s.policy.Deadline.String())
		return "", false, extraction.Extraction{}
	}
	if x.Degraded {
		s.deps.Audit.Record(ctx, audit.EventExtractionDegraded, ev.CallSid, c.ID, "", "extraction fell back to defaults", nil)
	}
	return transcript, true, x
}

func (s *Service) buildRecord(ev calls.CallEvent, c directory.Contractor, status calls.JobStatus, transcript string, x extraction.Extraction) calls.JobRecord {
	rec := calls.JobRecord{
		ContractorID: c.ID,
		CallSid:      ev.CallSid,
		Source:       calls.SourceAIReceptionist,
		Status:       status,
		CreatedAt:    s.clock().UTC(),
		CallerPhone:  ev.From,
		RecordingURL: ev.RecordingURL,
	}
	if status == calls.JobStatusMissed {
		return rec
	}

	conf := x.Confidence
	rec.CallerPhone = x.CallerPhone
	if rec.CallerPhone == "" {
		rec.CallerPhone = ev.From
	}
	rec.CallerName = x.CallerName
	rec.IssueType = x.IssueType
	rec.Urgency = x.Urgency
	rec.Address = x.Address
	rec.Description = x.Description
	rec.EstimatedScope = x.EstimatedScope
	rec.Confidence = &conf
	rec.Transcript = transcript
	return rec
}

func (s *Service) remember(ctx context.Context, callSid string, r Result) Result {
	if s.deps.Idempotency == nil {
		return r
	}
	stored, err := s.deps.Idempotency.Remember(ctx, callSid, r)
	if err != nil {
		logger.From(ctx).Warn("idempotency store failed", "error", err)
		return r
	}
	return stored
}

func (s *Service) callProcessed(outcome string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.CallProcessed(outcome)
	}
}
