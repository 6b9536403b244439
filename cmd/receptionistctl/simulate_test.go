package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/httpapi"
	"ai-receptionist/internal/receptionist"
	"ai-receptionist/internal/telephony"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen map[string]calls.CallEvent
}

func (p *recordingProcessor) Process(_ context.Context, ev calls.CallEvent) (receptionist.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[ev.CallSid] = ev
	return receptionist.Result{JobID: "job-" + ev.CallSid, SMSStatus: receptionist.SMSSent}, nil
}

func newSignedServer(t *testing.T, secret string) (*httptest.Server, *recordingProcessor) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p := &recordingProcessor{seen: map[string]calls.CallEvent{}}
	r := gin.New()
	h := httpapi.InboundHandler{Service: p, Verifier: &telephony.SignatureVerifier{Secret: secret}}
	r.Any("/api/receptionist/inbound", h.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, p
}

func TestSimulate_SignedJSONCallsAllAccepted(t *testing.T) {
	srv, p := newSignedServer(t, "s3cret")
	sim := simulation{
		URL:         srv.URL + "/api/receptionist/inbound",
		Secret:      "s3cret",
		From:        "+15550100000",
		To:          "+15550001111",
		Transcript:  "leaking sink",
		Count:       12,
		Concurrency: 4,
		Client:      srv.Client(),
	}
	out, err := sim.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 12 {
		t.Fatalf("expected 12 outcomes, got %d", len(out))
	}
	for _, o := range out {
		if o.HTTP != 200 || o.SMSStatus != "sent" || o.JobID != "job-"+o.CallSid {
			t.Fatalf("unexpected outcome: %+v", o)
		}
	}
	if len(p.seen) != 12 {
		t.Fatalf("expected 12 distinct call sids, got %d", len(p.seen))
	}
	for _, ev := range p.seen {
		if ev.TranscriptionText != "leaking sink" || ev.CallStatus != calls.CallStatusCompleted {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestSimulate_SignedFormCallsAccepted(t *testing.T) {
	srv, p := newSignedServer(t, "s3cret")
	sim := simulation{
		URL:          srv.URL + "/api/receptionist/inbound",
		Secret:       "s3cret",
		From:         "+15550100000",
		To:           "+15550001111",
		RecordingURL: "https://recordings.example.com/RE1",
		Count:        3,
		Concurrency:  2,
		Form:         true,
		Client:       srv.Client(),
	}
	out, err := sim.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, o := range out {
		if o.HTTP != 200 {
			t.Fatalf("unexpected outcome: %+v", o)
		}
	}
	for _, ev := range p.seen {
		if ev.RecordingURL != "https://recordings.example.com/RE1" || ev.TranscriptionText != "" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestSimulate_WrongSecretRejected(t *testing.T) {
	srv, p := newSignedServer(t, "s3cret")
	sim := simulation{
		URL:         srv.URL + "/api/receptionist/inbound",
		Secret:      "other",
		From:        "+15550100000",
		To:          "+15550001111",
		Transcript:  "hello",
		Count:       2,
		Concurrency: 2,
		Client:      srv.Client(),
	}
	out, err := sim.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, o := range out {
		if o.HTTP != 401 || o.ErrorCode != "UNAUTHORIZED" || o.Err == "" {
			t.Fatalf("expected 401 outcome, got %+v", o)
		}
	}
	if len(p.seen) != 0 {
		t.Fatalf("expected no processed calls")
	}
}

func TestSimulate_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := simulation{URL: "http://127.0.0.1:1/unused", To: "+15550001111", Count: 3, Concurrency: 1}
	if _, err := sim.run(ctx); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRenderSummary_GroupsByResult(t *testing.T) {
	var buf strings.Builder
	renderSummary(&buf, []simOutcome{
		{HTTP: 200, SMSStatus: "sent", Took: 10 * time.Millisecond},
		{HTTP: 200, SMSStatus: "sent", Took: 30 * time.Millisecond},
		{HTTP: 404, ErrorCode: "CONTRACTOR_NOT_FOUND", Took: time.Millisecond},
	})
	got := buf.String()
	for _, want := range []string{"200 sent", "404 CONTRACTOR_NOT_FOUND", "20ms", "30ms"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in summary:\n%s", want, got)
		}
	}
}
