// Package session implements the stateless admin session token: a JSON payload
// encoded with unpadded base64url, followed by "." and an HMAC-SHA256 signature
// over the encoded payload.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload is returned for any payload that cannot be fully decoded
	ErrInvalidPayload = errors.New("invalid session payload")
	// ErrMalformedToken is returned when the token is not exactly "payload.signature"
	ErrMalformedToken = errors.New("malformed session token")
	// ErrBadSignature is returned when the signature does not match the payload
	ErrBadSignature = errors.New("invalid session signature")
	// ErrExpired is returned when the payload's expiry has passed
	ErrExpired = errors.New("session expired")
	// ErrNoSecret is returned when minting without a configured signing secret
	ErrNoSecret = errors.New("session secret not configured")
)

// Payload is the data carried by an admin session token
type Payload struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt int64  `json:"exp"`
}

// wirePayload keeps exp as a pointer so a missing field is distinguishable from zero
type wirePayload struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt *int64 `json:"exp"`
}

// EncodePayload serializes p to JSON and encodes it as unpadded base64url
func EncodePayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodePayload reverses EncodePayload. It never returns a partially populated
// payload: any decoding problem or missing required field yields ErrInvalidPayload.
func DecodePayload(encoded string) (Payload, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if wire.Subject == "" || wire.Email == "" || wire.ExpiresAt == nil {
		return Payload{}, fmt.Errorf("%w: missing required field", ErrInvalidPayload)
	}

	return Payload{
		Subject:   wire.Subject,
		Email:     wire.Email,
		Name:      wire.Name,
		ExpiresAt: *wire.ExpiresAt,
	}, nil
}
