package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Transcribe(t *testing.T) {
	var got transcribeRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key", "whisper-1", nil)
	text, err := c.Transcribe(context.Background(), "https://rec.example/r1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("unexpected text %q", text)
	}
	if auth != "Bearer key" || got.URL != "https://rec.example/r1" || got.Model != "whisper-1" {
		t.Fatalf("unexpected request: %q %+v", auth, got)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", "", nil).Transcribe(context.Background(), "u")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable || !se.Temporary() {
		t.Fatalf("expected temporary StatusError, got %v", err)
	}
}
