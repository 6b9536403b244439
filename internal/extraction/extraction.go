package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-receptionist/internal/calls"
)

const (
	// MaxDescriptionRunes caps Extraction.Description on every path.
	MaxDescriptionRunes = 500
	// DegradedConfidence is assigned when the model output cannot be used.
	DegradedConfidence = 0.3
)

// Extraction is the structured reading of one call transcript.
type Extraction struct {
	CallerName     *string         `json:"callerName"`
	CallerPhone    string          `json:"callerPhone"`
	IssueType      calls.IssueType `json:"issueType"`
	Urgency        calls.Urgency   `json:"urgency"`
	Address        *string         `json:"propertyAddress"`
	Description    string          `json:"description"`
	EstimatedScope *string         `json:"estimatedScope"`
	Confidence     float64         `json:"confidence"`

	// Degraded is set when the result was synthesized instead of extracted.
	Degraded bool `json:"-"`
}

// Degraded returns the fallback extraction used whenever the model fails or
// answers with something that does not validate.
func Degraded(transcript, callerPhone string) Extraction {
	return Extraction{
		CallerPhone: callerPhone,
		IssueType:   calls.IssueOther,
		Urgency:     calls.UrgencyMedium,
		Description: Truncate(strings.TrimSpace(transcript), MaxDescriptionRunes),
		Confidence:  DegradedConfidence,
		Degraded:    true,
	}
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

var errInvalidField = errors.New("extraction: invalid field")

// Parse decodes raw model output into a validated Extraction. Any missing or
// out-of-range required field is an error; callers fall back to Degraded.
func Parse(raw, transcript, fallbackPhone string) (Extraction, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &m); err != nil {
		return Extraction{}, fmt.Errorf("extraction: decoding model output: %w", err)
	}

	issue := calls.IssueType(normalizeEnum(m["issueType"]))
	if !issue.Valid() {
		return Extraction{}, fmt.Errorf("%w: issueType=%v", errInvalidField, m["issueType"])
	}
	urgency := calls.Urgency(normalizeEnum(m["urgency"]))
	if !urgency.Valid() {
		return Extraction{}, fmt.Errorf("%w: urgency=%v", errInvalidField, m["urgency"])
	}
	conf, ok := m["confidence"].(float64)
	if !ok || conf < 0 || conf > 1 {
		return Extraction{}, fmt.Errorf("%w: confidence=%v", errInvalidField, m["confidence"])
	}

	name, err := optionalString(m, "callerName")
	if err != nil {
		return Extraction{}, err
	}
	addr, err := optionalString(m, "propertyAddress")
	if err != nil {
		return Extraction{}, err
	}
	scope, err := optionalString(m, "estimatedScope")
	if err != nil {
		return Extraction{}, err
	}

	desc, _ := m["description"].(string)
	desc = strings.TrimSpace(desc)
	if desc == "" {
		desc = strings.TrimSpace(transcript)
	}

	phone := fallbackPhone
	if p, _ := m["callerPhone"].(string); calls.IsE164(calls.NormalizePhone(p)) {
		phone = calls.NormalizePhone(p)
	}

	return Extraction{
		CallerName:     name,
		CallerPhone:    phone,
		IssueType:      issue,
		Urgency:        urgency,
		Address:        addr,
		Description:    Truncate(desc, MaxDescriptionRunes),
		EstimatedScope: scope,
		Confidence:     conf,
	}, nil
}

func normalizeEnum(v any) string {
	s, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(s))
}

// optionalString accepts a string, null or absence. Blank strings become nil.
func optionalString(m map[string]any, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", errInvalidField, key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

// stripFences removes a surrounding ```json fence some models add.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
