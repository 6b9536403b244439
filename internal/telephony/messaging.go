package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMessagingTimeout = 10 * time.Second

// MessagingConfig holds outbound SMS credentials. All three identity fields
// must be set for the client to send.
type MessagingConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

// MessagingClient sends SMS through the provider's Messages REST resource.
type MessagingClient struct {
	cfg        MessagingConfig
	httpClient *http.Client
}

func NewMessagingClient(cfg MessagingConfig, httpClient *http.Client) *MessagingClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultMessagingTimeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	return &MessagingClient{cfg: cfg, httpClient: httpClient}
}

// Configured returns true if credentials and a sender number are present.
func (c *MessagingClient) Configured() bool {
	return c != nil && c.cfg.AccountSID != "" && c.cfg.AuthToken != "" && c.cfg.FromNumber != ""
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("telephony: messaging returned status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("telephony: messaging returned status %d", e.Code)
}

// SentMessage is the subset of the provider response we keep.
type SentMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// SendSMS posts one message. Any 2xx is success.
func (c *MessagingClient) SendSMS(ctx context.Context, to, body string) (SentMessage, error) {
	if !c.Configured() {
		return SentMessage{}, fmt.Errorf("telephony: messaging not configured")
	}

	form := url.Values{}
	form.Set("From", c.cfg.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.BaseURL, url.PathEscape(c.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return SentMessage{}, fmt.Errorf("telephony: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SentMessage{}, fmt.Errorf("telephony: sending sms: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &e)
		return SentMessage{}, &StatusError{Code: resp.StatusCode, Message: e.Message}
	}

	var msg SentMessage
	_ = json.Unmarshal(respBody, &msg)
	return msg, nil
}
