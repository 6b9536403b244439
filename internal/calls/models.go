package calls

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// CallEvent is the inbound webhook payload describing one phone call.
// It is created by the telephony provider and consumed once per webhook.
//
// JSON field names follow the provider's form field names so the same struct
// decodes both JSON and form-encoded bodies.
type CallEvent struct {
	From              string     `json:"From"`
	To                string     `json:"To"`
	CallSid           string     `json:"CallSid"`
	RecordingURL      string     `json:"RecordingUrl,omitempty"`
	TranscriptionText string     `json:"TranscriptionText,omitempty"`
	CallStatus        CallStatus `json:"CallStatus,omitempty"`
}

type CallStatus string

const (
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusNoAnswer   CallStatus = "no-answer"
)

func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusRinging, CallStatusInProgress, CallStatusCompleted, CallStatusNoAnswer:
		return true
	default:
		return false
	}
}

var (
	ErrMissingField  = errors.New("calls: missing required field")
	ErrInvalidNumber = errors.New("calls: invalid E.164 number")
	ErrInvalidStatus = errors.New("calls: invalid call status")
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// IsE164 reports whether s looks like an E.164 number (+ and 7 to 15 digits).
func IsE164(s string) bool { return e164.MatchString(s) }

// NormalizePhone strips whitespace and common punctuation. It does not add a
// country code; numbers without a leading + are left for validation to reject.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, s)
}

// Normalize returns a copy with phone numbers cleaned and text fields trimmed.
// An empty status is treated as completed.
func (e CallEvent) Normalize() CallEvent {
	e.From = NormalizePhone(e.From)
	e.To = NormalizePhone(e.To)
	e.CallSid = strings.TrimSpace(e.CallSid)
	e.RecordingURL = strings.TrimSpace(e.RecordingURL)
	e.CallStatus = CallStatus(strings.ToLower(strings.TrimSpace(string(e.CallStatus))))
	if e.CallStatus == "" {
		e.CallStatus = CallStatusCompleted
	}
	return e
}

// Validate checks the fields every downstream stage depends on.
func (e CallEvent) Validate() error {
	var missing []string
	if e.From == "" {
		missing = append(missing, "From")
	}
	if e.To == "" {
		missing = append(missing, "To")
	}
	if e.CallSid == "" {
		missing = append(missing, "CallSid")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	if !IsE164(e.To) {
		return fmt.Errorf("%w: To=%q", ErrInvalidNumber, e.To)
	}
	// Callers can be withheld ("anonymous"); only the dialed number must route.
	if !IsE164(e.From) && !strings.EqualFold(e.From, "anonymous") {
		return fmt.Errorf("%w: From=%q", ErrInvalidNumber, e.From)
	}
	if e.CallStatus != "" && !e.CallStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.CallStatus)
	}
	return nil
}

// HasTranscript reports whether the provider already supplied transcript text.
func (e CallEvent) HasTranscript() bool {
	return strings.TrimSpace(e.TranscriptionText) != ""
}
