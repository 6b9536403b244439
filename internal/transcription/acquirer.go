package transcription

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ai-receptionist/internal/calls"
	"ai-receptionist/pkg/logger"
	"ai-receptionist/pkg/utils"
)

var errEmptyTranscript = errors.New("transcription: empty transcript")

// Observer receives attempt outcomes. metrics.Collector satisfies it.
type Observer interface {
	TranscriptionAttempt(outcome string)
}

// Acquirer produces the best available transcript for a call.
type Acquirer struct {
	Client   Transcriber
	Policy   utils.RetryPolicy
	Observer Observer
}

func NewAcquirer(client Transcriber, maxAttempts int, baseDelay time.Duration) *Acquirer {
	return &Acquirer{
		Client: client,
		Policy: utils.RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay},
	}
}

// Acquire returns the provider transcript when present, otherwise transcribes
// the recording with retries. ok is false when no transcript could be had;
// that is an expected outcome, not an error.
func (a *Acquirer) Acquire(ctx context.Context, ev calls.CallEvent) (text string, ok bool) {
	if ev.HasTranscript() {
		return ev.TranscriptionText, true
	}
	if ev.RecordingURL == "" || a.Client == nil {
		return "", false
	}

	log := logger.From(ctx).With("call_sid", ev.CallSid)
	policy := a.Policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("transcription attempt failed", "attempt", attempt, "retry_in", delay.String(), "error", err)
	}

	text, err := utils.WithRetry(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
		t, err := a.Client.Transcribe(ctx, ev.RecordingURL)
		if err != nil {
			a.observe("error")
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return "", utils.Permanent(err)
			}
			return "", err
		}
		if strings.TrimSpace(t) == "" {
			a.observe("empty")
			return "", utils.Permanent(errEmptyTranscript)
		}
		a.observe("success")
		return t, nil
	})
	if err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "transcription unavailable", slog.Any("error", err))
		return "", false
	}
	return text, true
}

func (a *Acquirer) observe(outcome string) {
	if a.Observer != nil {
		a.Observer.TranscriptionAttempt(outcome)
	}
}
