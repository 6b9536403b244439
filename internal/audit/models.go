package audit

import "time"

// Event is an immutable, append-only record of something notable that happened
// while processing a call.
//
// Invariants:
// - Events are never updated or deleted.
// - call_sid is required; every event belongs to one inbound call.
// - Recording is best-effort; a failed append never fails the call.
type Event struct {
	ID      string    `json:"id" db:"id"`
	CallSid string    `json:"call_sid" db:"call_sid"`
	Type    EventType `json:"type" db:"type"`

	ContractorID string `json:"contractor_id,omitempty" db:"contractor_id"`
	JobID        string `json:"job_id,omitempty" db:"job_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventContractorNotFound  EventType = "contractor_not_found"
	EventTranscriptionFailed EventType = "transcription_failed"
	EventExtractionDegraded  EventType = "extraction_degraded"
	EventNotificationFailed  EventType = "notification_failed"
	EventJobCreated          EventType = "job_created"
)
