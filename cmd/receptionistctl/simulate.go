package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/telephony"
)

// simulation replays synthetic inbound calls against a running service.
type simulation struct {
	URL          string
	Secret       string
	From         string
	To           string
	Transcript   string
	RecordingURL string
	Count        int
	Concurrency  int
	Form         bool
	Client       *http.Client
}

// simOutcome is the service's answer to one simulated call.
type simOutcome struct {
	CallSid   string        `json:"callSid"`
	HTTP      int           `json:"http"`
	JobID     string        `json:"jobId,omitempty"`
	SMSStatus string        `json:"smsStatus,omitempty"`
	ErrorCode string        `json:"errorCode,omitempty"`
	Err       string        `json:"err,omitempty"`
	Took      time.Duration `json:"took"`
}

type inboundResponse struct {
	Success   bool   `json:"success"`
	JobID     string `json:"jobId"`
	SMSStatus string `json:"smsStatus"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

func simulateCmd() *cobra.Command {
	sim := simulation{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Send signed synthetic call webhooks concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sim.URL == "" || sim.To == "" {
				return fmt.Errorf("--url and --to are required")
			}
			sim.Client = &http.Client{Timeout: 60 * time.Second}
			out, err := sim.run(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd, out)
			}
			renderSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&sim.URL, "url", "", "public webhook URL of the service")
	cmd.Flags().StringVar(&sim.Secret, "secret", os.Getenv("TWILIO_WEBHOOK_SECRET"), "webhook signing secret (empty: unsigned)")
	cmd.Flags().StringVar(&sim.From, "from", "+15550100000", "caller number")
	cmd.Flags().StringVar(&sim.To, "to", "", "dialed contractor number")
	cmd.Flags().StringVar(&sim.Transcript, "transcript", "Hi, this is Dana. My kitchen sink is leaking under the cabinet, can someone come out tomorrow?", "provider transcript to send")
	cmd.Flags().StringVar(&sim.RecordingURL, "recording-url", "", "recording URL to send instead of a transcript")
	cmd.Flags().IntVarP(&sim.Count, "count", "n", 10, "number of calls")
	cmd.Flags().IntVarP(&sim.Concurrency, "concurrency", "c", 4, "maximum calls in flight")
	cmd.Flags().BoolVar(&sim.Form, "form", false, "send form-encoded bodies instead of JSON")
	return cmd
}

// run sends Count calls with at most Concurrency in flight. Per-call failures
// are reported in the outcome; only cancellation aborts the run.
func (s simulation) run(ctx context.Context) ([]simOutcome, error) {
	if s.Count <= 0 {
		return nil, nil
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	out := make([]simOutcome, s.Count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i := range s.Count {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.send(gctx, client, s.event())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

func (s simulation) event() calls.CallEvent {
	ev := calls.CallEvent{
		From:       s.From,
		To:         s.To,
		CallSid:    "CA" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		CallStatus: calls.CallStatusCompleted,
	}
	if s.RecordingURL != "" {
		ev.RecordingURL = s.RecordingURL
	} else {
		ev.TranscriptionText = s.Transcript
	}
	return ev
}

func (s simulation) send(ctx context.Context, client *http.Client, ev calls.CallEvent) simOutcome {
	res := simOutcome{CallSid: ev.CallSid}
	start := time.Now()
	defer func() { res.Took = time.Since(start) }()

	req, err := s.request(ctx, ev)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	defer resp.Body.Close()
	res.HTTP = resp.StatusCode

	var body inboundResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		res.Err = fmt.Sprintf("decode response: %v", err)
		return res
	}
	res.JobID, res.SMSStatus, res.ErrorCode = body.JobID, body.SMSStatus, body.ErrorCode
	if !body.Success {
		res.Err = body.Error
	}
	return res
}

func (s simulation) request(ctx context.Context, ev calls.CallEvent) (*http.Request, error) {
	var (
		target      = s.URL
		body        []byte
		contentType string
		signature   string
	)
	if s.Form {
		form := url.Values{}
		form.Set("From", ev.From)
		form.Set("To", ev.To)
		form.Set("CallSid", ev.CallSid)
		form.Set("CallStatus", string(ev.CallStatus))
		if ev.TranscriptionText != "" {
			form.Set("TranscriptionText", ev.TranscriptionText)
		}
		if ev.RecordingURL != "" {
			form.Set("RecordingUrl", ev.RecordingURL)
		}
		body = []byte(form.Encode())
		contentType = "application/x-www-form-urlencoded"
		if s.Secret != "" {
			signature = telephony.Sign(s.Secret, target, form)
		}
	} else {
		b, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}
		body = b
		contentType = "application/json"
		if s.Secret != "" {
			signedURL, sig, err := telephony.SignJSON(s.Secret, target, body)
			if err != nil {
				return nil, fmt.Errorf("sign: %w", err)
			}
			target, signature = signedURL, sig
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if signature != "" {
		req.Header.Set(telephony.HeaderSignature, signature)
	}
	return req, nil
}

// renderSummary prints one row per distinct result with counts and latency.
func renderSummary(w io.Writer, out []simOutcome) {
	type bucket struct {
		count int
		total time.Duration
		worst time.Duration
	}
	buckets := map[string]*bucket{}
	for _, o := range out {
		key := fmt.Sprintf("%d %s", o.HTTP, o.SMSStatus)
		if o.ErrorCode != "" {
			key = fmt.Sprintf("%d %s", o.HTTP, o.ErrorCode)
		} else if o.HTTP == 0 {
			key = "transport error"
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.total += o.Took
		b.worst = max(b.worst, o.Took)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Result", "Calls", "Avg", "Max"})
	for _, k := range keys {
		b := buckets[k]
		avg := b.total / time.Duration(b.count)
		tw.AppendRow(table.Row{k, b.count, avg.Round(time.Millisecond), b.worst.Round(time.Millisecond)})
	}
	tw.AppendFooter(table.Row{"Total", len(out), "", ""})
	tw.Render()
}
