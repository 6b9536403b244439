package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-receptionist/internal/telephony"
)

type stubSender struct {
	configured bool
	err        error
	calls      int
	to, body   string
}

func (s *stubSender) Configured() bool { return s.configured }

func (s *stubSender) SendSMS(ctx context.Context, to, body string) (telephony.SentMessage, error) {
	s.calls++
	s.to, s.body = to, body
	if s.err != nil {
		return telephony.SentMessage{}, s.err
	}
	return telephony.SentMessage{SID: "SM1"}, nil
}

func TestSend_Success(t *testing.T) {
	s := &stubSender{configured: true}
	a := New(s, "https://app.example.com/onboarding").Send(context.Background(), "+15551234567", "job-1", "c-1")

	if !a.Success || a.JobID != "job-1" || a.Phone != "+15551234567" {
		t.Fatalf("unexpected attempt: %+v", a)
	}
	if s.to != "+15551234567" {
		t.Fatalf("unexpected recipient %q", s.to)
	}
	if !strings.Contains(s.body, "https://app.example.com/onboarding?contractor=c-1&job=job-1") {
		t.Fatalf("expected onboarding link in body, got %q", s.body)
	}
}

func TestSend_MissingCredentialsSkipsCall(t *testing.T) {
	s := &stubSender{}
	a := New(s, "https://x").Send(context.Background(), "+15551234567", "job-1", "c-1")
	if a.Success || s.calls != 0 {
		t.Fatalf("expected failure without provider call, got %+v calls=%d", a, s.calls)
	}
}

func TestSend_ProviderErrorIsFailure(t *testing.T) {
	s := &stubSender{configured: true, err: errors.New("status 500")}
	if a := New(s, "https://x").Send(context.Background(), "+15551234567", "job-1", "c-1"); a.Success {
		t.Fatalf("expected failure")
	}
}

func TestOnboardingLink_KeepsExistingQuery(t *testing.T) {
	got := OnboardingLink("https://app.example.com/start?ref=sms", "j 1", "c-1")
	if got != "https://app.example.com/start?contractor=c-1&job=j+1&ref=sms" {
		t.Fatalf("unexpected link %q", got)
	}
}

func TestSend_WithheldNumberSkipsCall(t *testing.T) {
	s := &stubSender{configured: true}
	if a := New(s, "https://x").Send(context.Background(), "anonymous", "job-1", "c-1"); a.Success || s.calls != 0 {
		t.Fatalf("expected skipped send, got %+v calls=%d", a, s.calls)
	}
}
