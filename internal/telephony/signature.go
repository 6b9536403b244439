package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// HeaderSignature carries the provider's request signature.
const HeaderSignature = "X-Twilio-Signature"

var ErrInvalidSignature = errors.New("telephony: invalid webhook signature")

// SignatureVerifier validates provider webhook signatures:
// base64(HMAC-SHA1(secret, url + concatenated sorted form key/values)).
// JSON bodies are signed over the URL alone, which must carry a
// bodySHA256 query parameter matching the body.
type SignatureVerifier struct {
	Secret string
	// PublicURL overrides the URL reconstructed from the request. Set it when
	// the service sits behind a proxy that rewrites host or scheme.
	PublicURL string
}

// Verify checks the signature of an already-read webhook.
func (v SignatureVerifier) Verify(r *http.Request, hook InboundWebhook) error {
	if v.Secret == "" {
		return errors.New("telephony: signature secret not configured")
	}
	got := r.Header.Get(HeaderSignature)
	if got == "" {
		return ErrInvalidSignature
	}

	fullURL := v.requestURL(r)
	var want string
	if hook.JSON {
		u, err := url.Parse(fullURL)
		if err != nil {
			return ErrInvalidSignature
		}
		sum := sha256.Sum256(hook.Body)
		if !strings.EqualFold(u.Query().Get("bodySHA256"), hex.EncodeToString(sum[:])) {
			return ErrInvalidSignature
		}
		want = Sign(v.Secret, fullURL, nil)
	} else {
		want = Sign(v.Secret, fullURL, hook.Params)
	}

	if !hmac.Equal([]byte(got), []byte(want)) {
		return ErrInvalidSignature
	}
	return nil
}

func (v SignatureVerifier) requestURL(r *http.Request) string {
	if v.PublicURL != "" {
		if r.URL.RawQuery != "" {
			return strings.TrimRight(v.PublicURL, "?") + "?" + r.URL.RawQuery
		}
		return v.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// Sign computes the provider signature for fullURL and params.
func Sign(secret, fullURL string, params url.Values) string {
	var b strings.Builder
	b.WriteString(fullURL)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, val := range vals {
			b.WriteString(k)
			b.WriteString(val)
		}
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignJSON returns the URL to post a JSON body to (with bodySHA256 appended)
// and the signature for it.
func SignJSON(secret, rawURL string, body []byte) (signedURL, signature string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256(body)
	q := u.Query()
	q.Set("bodySHA256", hex.EncodeToString(sum[:]))
	u.RawQuery = q.Encode()
	signedURL = u.String()
	return signedURL, Sign(secret, signedURL, nil), nil
}
