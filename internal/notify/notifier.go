package notify

import (
	"context"
	"net/url"
	"strings"

	"ai-receptionist/internal/calls"
	"ai-receptionist/internal/telephony"
	"ai-receptionist/pkg/logger"
)

// Sender delivers one SMS. telephony.MessagingClient satisfies it.
type Sender interface {
	Configured() bool
	SendSMS(ctx context.Context, to, body string) (telephony.SentMessage, error)
}

// NotificationAttempt records the outcome of one follow-up text.
type NotificationAttempt struct {
	Phone   string
	JobID   string
	Success bool
}

// Notifier texts callers a link to track the job created from their call.
type Notifier struct {
	sender        Sender
	onboardingURL string
}

func New(sender Sender, onboardingURL string) *Notifier {
	return &Notifier{sender: sender, onboardingURL: onboardingURL}
}

// Send never returns an error; delivery failures are reported through
// NotificationAttempt.Success and logged.
func (n *Notifier) Send(ctx context.Context, phone, jobID, contractorID string) NotificationAttempt {
	attempt := NotificationAttempt{Phone: phone, JobID: jobID}
	log := logger.From(ctx).With("job_id", jobID)

	if !calls.IsE164(phone) {
		log.Warn("caller number cannot receive sms; follow-up skipped")
		return attempt
	}
	if n.sender == nil || !n.sender.Configured() {
		log.Warn("messaging credentials missing; follow-up sms skipped")
		return attempt
	}

	msg, err := n.sender.SendSMS(ctx, phone, Body(OnboardingLink(n.onboardingURL, jobID, contractorID)))
	if err != nil {
		log.Warn("follow-up sms failed", "error", err)
		return attempt
	}
	log.Info("follow-up sms sent", "message_sid", msg.SID)
	attempt.Success = true
	return attempt
}

// OnboardingLink appends job and contractor query parameters to base.
func OnboardingLink(base, jobID, contractorID string) string {
	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + "job=" + url.QueryEscape(jobID) + "&contractor=" + url.QueryEscape(contractorID)
	}
	q := u.Query()
	q.Set("job", jobID)
	q.Set("contractor", contractorID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Body is the follow-up text sent to a caller.
func Body(link string) string {
	return "Thanks for calling! We got your request and the contractor will follow up. Track it and add photos here: " + link
}
