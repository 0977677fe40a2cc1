package qualpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

// SignatureHeader carries one or more base64 HMAC-SHA256 signatures of the
// raw request body. Qualpay sends several values during key rotation; any
// one matching is enough.
const SignatureHeader = "X-Qualpay-Webhook-Signature"

var (
	ErrEmptyWebhookBody = errors.New("webhook body is empty")
	ErrMissingSignature = errors.New("webhook signature header is missing")
	ErrBadSignature     = errors.New("webhook signature does not match")
)

// VerifySignature checks the raw body against the supplied signature header
// values. The body must be the unmodified bytes as received; any framework
// re-encoding breaks the HMAC.
func VerifySignature(body []byte, signatures []string, secret string) error {
	if len(body) == 0 {
		return ErrEmptyWebhookBody
	}
	if len(signatures) == 0 {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	computed := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(computed)) {
			return nil
		}
	}

	return ErrBadSignature
}

// WebhookEvent is the envelope of an inbound notification. Data is left raw
// because its shape depends on the event type.
type WebhookEvent struct {
	WebhookID int64           `json:"webhook_id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
}

// ParseEvent decodes a verified webhook body. Call VerifySignature first;
// the payload is not trustworthy before that.
func ParseEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
