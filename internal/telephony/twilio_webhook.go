package telephony

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"ai-receptionist/internal/calls"
)

// MaxWebhookBody caps inbound webhook bodies. Provider payloads are a few KB.
const MaxWebhookBody = 64 << 10

var ErrInvalidPayload = errors.New("telephony: invalid webhook payload")

// InboundWebhook is a decoded provider call webhook.
// Params holds the form fields for form-encoded bodies; they are what the
// provider signs. For JSON bodies Params is nil and Body is signed by hash.
type InboundWebhook struct {
	Event  calls.CallEvent
	Params url.Values
	Body   []byte
	JSON   bool
}

// ReadWebhookBody reads at most MaxWebhookBody bytes of the request body.
func ReadWebhookBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxWebhookBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidPayload, MaxWebhookBody)
	}
	return body, nil
}

// ParseInboundCall decodes a call webhook. The provider posts
// application/x-www-form-urlencoded by default; JSON is accepted for
// integrations that relay the same fields.
//
// Business validation happens on the returned CallEvent, not here.
func ParseInboundCall(contentType string, body []byte) (InboundWebhook, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/json":
		var ev calls.CallEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return InboundWebhook{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return InboundWebhook{Event: ev.Normalize(), Body: body, JSON: true}, nil
	case "application/x-www-form-urlencoded", "":
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return InboundWebhook{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		ev := calls.CallEvent{
			From:              vals.Get("From"),
			To:                vals.Get("To"),
			CallSid:           vals.Get("CallSid"),
			RecordingURL:      vals.Get("RecordingUrl"),
			TranscriptionText: vals.Get("TranscriptionText"),
			CallStatus:        calls.CallStatus(vals.Get("CallStatus")),
		}
		return InboundWebhook{Event: ev.Normalize(), Params: vals, Body: body}, nil
	default:
		return InboundWebhook{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidPayload, mediaType)
	}
}
