package calls

import "time"

// SourceAIReceptionist tags every record created by the inbound call pipeline.
const SourceAIReceptionist = "ai_receptionist"

// JobStatus distinguishes the three record variants.
type JobStatus string

const (
	// JobStatusNew is a private job with full extracted fields.
	JobStatusNew JobStatus = "new"
	// JobStatusVoicemail is a low-confidence record kept for manual review.
	JobStatusVoicemail JobStatus = "voicemail"
	// JobStatusMissed is a call with no transcript at all.
	JobStatusMissed JobStatus = "missed"
)

type IssueType string

const (
	IssueRepair    IssueType = "repair"
	IssueInstall   IssueType = "install"
	IssueInspect   IssueType = "inspect"
	IssueEmergency IssueType = "emergency"
	IssueQuote     IssueType = "quote"
	IssueOther     IssueType = "other"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueRepair, IssueInstall, IssueInspect, IssueEmergency, IssueQuote, IssueOther:
		return true
	default:
		return false
	}
}

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	default:
		return false
	}
}

// JobRecord is the persisted outcome of one call.
//
// Invariant: exactly one JobRecord exists per CallSid. Which variant it is
// depends only on transcript presence and extraction confidence.
// Extraction fields are empty on missed-call records.
type JobRecord struct {
	ID           string    `json:"id" db:"id"`
	ContractorID string    `json:"contractor_id" db:"contractor_id"`
	CallSid      string    `json:"call_sid" db:"call_sid"`
	Source       string    `json:"source" db:"source"`
	Status       JobStatus `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	CallerPhone    string    `json:"caller_phone" db:"caller_phone"`
	CallerName     *string   `json:"caller_name,omitempty" db:"caller_name"`
	IssueType      IssueType `json:"issue_type,omitempty" db:"issue_type"`
	Urgency        Urgency   `json:"urgency,omitempty" db:"urgency"`
	Address        *string   `json:"address,omitempty" db:"address"`
	Description    string    `json:"description,omitempty" db:"description"`
	EstimatedScope *string   `json:"estimated_scope,omitempty" db:"estimated_scope"`
	Confidence     *float64  `json:"confidence,omitempty" db:"confidence"`

	// Transcript is retained on voicemail and private records.
	Transcript   string `json:"transcript,omitempty" db:"transcript"`
	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`
}
