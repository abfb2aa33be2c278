package notifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the HTTP header carrying the callback signature.
const SignatureHeader = "X-Webhook-Signature"

// Sign computes the hex-encoded HMAC-SHA256 of body under secret. The
// result is a pure function of (secret, body).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the HMAC-SHA256 of
// body under secret, using a constant-time comparison. Receivers call
// this over the raw request body before decoding it.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
