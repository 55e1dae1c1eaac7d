package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is how far a webhook timestamp may drift from now.
const DefaultTolerance = 5 * time.Minute

const secretPrefix = "whsec_"

var (
	ErrMissingHeaders      = errors.New("missing webhook signature headers")
	ErrInvalidTimestamp    = errors.New("invalid webhook timestamp")
	ErrTimestampExpired    = errors.New("webhook timestamp outside tolerance")
	ErrNoMatchingSignature = errors.New("no matching webhook signature")
)

// SignatureVerifier checks inbound webhook signatures.
type SignatureVerifier interface {
	Verify(id, timestamp, signatures string, body []byte) error
}

// WebhookVerifier implements the Standard Webhooks HMAC-SHA256 scheme:
// the signed content is "{id}.{timestamp}.{body}" and the header carries
// space separated "v1,<base64>" entries.
type WebhookVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewWebhookVerifier accepts a "whsec_" prefixed base64 secret or a raw secret.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("webhook secret is empty")
	}

	key := []byte(secret)
	if strings.HasPrefix(secret, secretPrefix) {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
		if err != nil {
			return nil, errors.New("invalid webhook secret format")
		}
		key = decoded
	}

	return &WebhookVerifier{
		key:       key,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}, nil
}

// Sign returns the "v1,<base64>" signature for the given message.
func (v *WebhookVerifier) Sign(id string, timestamp time.Time, body []byte) string {
	return "v1," + base64.StdEncoding.EncodeToString(v.mac(id, strconv.FormatInt(timestamp.Unix(), 10), body))
}

// Verify checks the timestamp window and that any v1 signature matches.
func (v *WebhookVerifier) Verify(id, timestamp, signatures string, body []byte) error {
	if id == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	sent := time.Unix(ts, 0)
	now := v.now()
	if sent.Before(now.Add(-v.tolerance)) || sent.After(now.Add(v.tolerance)) {
		return ErrTimestampExpired
	}

	expected := v.mac(id, timestamp, body)
	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrNoMatchingSignature
}

func (v *WebhookVerifier) mac(id, timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, v.key)
	fmt.Fprintf(h, "%s.%s.", id, timestamp)
	h.Write(body)
	return h.Sum(nil)
}
