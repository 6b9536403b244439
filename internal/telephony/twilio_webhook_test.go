package telephony

import (
	"errors"
	"testing"

	"ai-receptionist/internal/calls"
)

func TestParseInboundCall_Form(t *testing.T) {
	body := []byte("CallSid=CA123&From=%2B15551234567&To=%2B15557654321&CallStatus=completed&RecordingUrl=https%3A%2F%2Frec.example%2Fr1")

	hook, err := ParseInboundCall("application/x-www-form-urlencoded", body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ev := hook.Event
	if ev.CallSid != "CA123" {
		t.Fatalf("expected CallSid")
	}
	if ev.From != "+15551234567" || ev.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", ev.From, ev.To)
	}
	if ev.RecordingURL != "https://rec.example/r1" || ev.CallStatus != calls.CallStatusCompleted {
		t.Fatalf("unexpected recording/status: %+v", ev)
	}
	if hook.JSON || hook.Params.Get("CallSid") != "CA123" {
		t.Fatalf("expected form params kept for signing")
	}
}

func TestParseInboundCall_JSON(t *testing.T) {
	body := []byte(`{"From":"+15551234567","To":"+15557654321","CallSid":"CA9","TranscriptionText":"my sink leaks","CallStatus":"completed"}`)

	hook, err := ParseInboundCall("application/json; charset=utf-8", body)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !hook.JSON || hook.Event.TranscriptionText != "my sink leaks" {
		t.Fatalf("unexpected hook: %+v", hook)
	}
}

func TestParseInboundCall_Malformed(t *testing.T) {
	if _, err := ParseInboundCall("application/json", []byte(`{"From":`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := ParseInboundCall("text/xml", []byte(`<x/>`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for xml, got %v", err)
	}
}
