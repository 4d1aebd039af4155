package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

func SignResource(secret string, parts ...string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	payload := strings.Join(parts, ":")
	mac.Write([]byte(payload))
	sum := mac.Sum(nil)
	return []byte(base64.RawURLEncoding.EncodeToString(sum))
}

// SignCookie appends an HMAC so a session id cannot be forged or guessed
// into another browser's storage namespace.
func SignCookie(secret, value string) string {
	return value + "." + string(SignResource(secret, "cookie", value))
}

// VerifyCookie returns the original value when the signature matches.
func VerifyCookie(secret, signed string) (string, bool) {
	idx := strings.LastIndex(signed, ".")
	if idx <= 0 || idx == len(signed)-1 {
		return "", false
	}
	value, sig := signed[:idx], signed[idx+1:]
	expected := SignResource(secret, "cookie", value)
	if !hmac.Equal([]byte(sig), expected) {
		return "", false
	}
	return value, true
}
