// Package webhook holds the pieces of the Facebook webhook contract that are
// independent of the HTTP transport: payload shapes and signature
// verification.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature validates an X-Hub-Signature-256 header against the raw
// request body using HMAC-SHA256 keyed with the app secret.
//
// Verification fails closed: an empty header, an unconfigured secret, a
// malformed header, or a method other than sha256 all reject the request.
// Digests are compared in constant time.
func VerifySignature(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	method, digest, ok := strings.Cut(header, "=")
	if !ok || method != "sha256" || digest == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(digest))
}
