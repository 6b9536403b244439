package telephony

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

const hookURL = "https://receptionist.example.com/api/receptionist/inbound"

func TestSign_KnownVector(t *testing.T) {
	// Reference vector from the provider's request validation docs.
	params := url.Values{}
	params.Set("CallSid", "CA1234567890ABCDE")
	params.Set("Caller", "+12349013030")
	params.Set("Digits", "1234")
	params.Set("From", "+12349013030")
	params.Set("To", "+18005551212")

	got := Sign("12345", "https://mycompany.com/myapp.php?foo=1&bar=2", params)
	if got != "RSOYDt4T1cUTdK1PDd93/VVr8B8=" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestVerify_FormBody(t *testing.T) {
	body := []byte("CallSid=CA1&From=%2B15551234567&To=%2B15557654321")
	hook, err := ParseInboundCall("application/x-www-form-urlencoded", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/receptionist/inbound", bytes.NewReader(body))
	r.Header.Set(HeaderSignature, Sign("secret", hookURL, hook.Params))

	v := SignatureVerifier{Secret: "secret", PublicURL: hookURL}
	if err := v.Verify(r, hook); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	r.Header.Set(HeaderSignature, Sign("other", hookURL, hook.Params))
	if err := v.Verify(r, hook); err == nil {
		t.Fatalf("expected invalid signature")
	}
}

func TestVerify_JSONBody(t *testing.T) {
	body := []byte(`{"From":"+15551234567","To":"+15557654321","CallSid":"CA2"}`)
	signedURL, sig, err := SignJSON("secret", "http://example.com/api/receptionist/inbound", body)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	hook, err := ParseInboundCall("application/json", body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, signedURL, bytes.NewReader(body))
	r.Header.Set(HeaderSignature, sig)

	v := SignatureVerifier{Secret: "secret"}
	if err := v.Verify(r, hook); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	tampered := hook
	tampered.Body = []byte(`{"From":"+15550000000","To":"+15557654321","CallSid":"CA2"}`)
	if err := v.Verify(r, tampered); err == nil {
		t.Fatalf("expected body hash mismatch to fail")
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/receptionist/inbound", nil)
	if err := (SignatureVerifier{Secret: "s"}).Verify(r, InboundWebhook{}); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
