package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignData returns the base64url (unpadded) HMAC-SHA256 of data under key
func SignData(data string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignedData reports whether signature is the HMAC of data under key.
// An empty key never validates anything.
func ValidateSignedData(data, signature string, key []byte) bool {
	if len(key) == 0 || signature == "" {
		return false
	}
	expected := SignData(data, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}
