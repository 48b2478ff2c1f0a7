package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks a Stripe-Signature header against the raw
// request body. The header is a comma-separated list of key=value pairs
// (later pairs win); the expected digest is HMAC-SHA256 over "{t}.{body}"
// encoded as lowercase hex and compared in constant time against v1.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	parts := make(map[string]string)
	for _, pair := range strings.Split(sig, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return false
		}
		parts[k] = v
	}

	timestamp, ok := parts["t"]
	if !ok {
		return false
	}
	provided, ok := parts["v1"]
	if !ok {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}
