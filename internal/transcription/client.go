package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Transcriber turns a recording URL into text. One call is one attempt;
// retries are the caller's concern.
type Transcriber interface {
	Transcribe(ctx context.Context, recordingURL string) (string, error)
}

// StatusError is returned for non-2xx responses from the transcription service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcription: service returned status %d: %s", e.Code, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client calls an HTTP transcription service that fetches the recording
// itself: POST {base}/audio/transcriptions {"url","model"} -> {"text"}.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type transcribeRequest struct {
	URL   string `json:"url"`
	Model string `json:"model,omitempty"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (c *Client) Transcribe(ctx context.Context, recordingURL string) (string, error) {
	body, err := json.Marshal(transcribeRequest{URL: recordingURL, Model: c.model})
	if err != nil {
		return "", fmt.Errorf("transcription: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transcription: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("transcription: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var out transcribeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("transcription: decoding response: %w", err)
	}
	return out.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
