package receptionist

import (
	"errors"

	"ai-receptionist/internal/calls"
)

// SMSStatus reports what happened to the caller follow-up text.
type SMSStatus string

const (
	SMSSent          SMSStatus = "sent"
	SMSFailed        SMSStatus = "failed"
	SMSNotSent       SMSStatus = "not_sent"
	SMSLowConfidence SMSStatus = "low_confidence"
)

// Result is what the webhook answers for a processed call.
type Result struct {
	JobID     string          `json:"jobId"`
	SMSStatus SMSStatus       `json:"smsStatus"`
	Status    calls.JobStatus `json:"status,omitempty"`
}

var (
	ErrInvalidEvent         = errors.New("receptionist: invalid call event")
	ErrContractorNotFound   = errors.New("receptionist: no contractor for dialed number")
	ErrDirectoryUnavailable = errors.New("receptionist: contractor directory unavailable")
	ErrStoreUnavailable     = errors.New("receptionist: job store unavailable")
)

// route picks the record variant and the initial sms status from transcript
// presence and extraction confidence. An empty SMSStatus means the caller
// should be texted.
func route(hasTranscript bool, confidence, threshold float64) (calls.JobStatus, SMSStatus) {
	switch {
	case !hasTranscript:
		return calls.JobStatusMissed, SMSNotSent
	case confidence < threshold:
		return calls.JobStatusVoicemail, SMSLowConfidence
	default:
		return calls.JobStatusNew, ""
	}
}

// replayStatus is reported when the store already holds a record for the
// call but no cached result exists. Nothing is sent for a replay.
func replayStatus(s calls.JobStatus) SMSStatus {
	if s == calls.JobStatusVoicemail {
		return SMSLowConfidence
	}
	return SMSNotSent
}
