// Package signature produces and verifies the keyed MAC that makes upload
// grants self-describing capabilities. It is stateless and never returns an
// error: callers translate a false verification into a domain error.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes an HMAC-SHA256 over the canonical string and returns it hex
// encoded. Two calls with identical inputs always produce identical output.
func Sign(canonical string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the MAC and compares it against the candidate in constant
// time. Malformed candidates (wrong length, non-hex) are simply false.
func Verify(canonical string, secret []byte, candidate string) bool {
	decoded, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(canonical))
	return hmac.Equal(mac.Sum(nil), decoded)
}
