package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgellow/shop-admin/internal/crypto"
)

// DefaultTTL is how long a freshly minted admin session stays valid
const DefaultTTL = 7 * 24 * time.Hour

// Codec mints and parses signed session tokens with a process-wide secret
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec
type Option func(*Codec)

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec. A zero or negative ttl falls back to DefaultTTL.
func NewCodec(secret []byte, ttl time.Duration, opts ...Option) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Codec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime given to minted sessions
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Configured reports whether a signing secret is available
func (c *Codec) Configured() bool {
	return len(c.secret) > 0
}

// Mint builds a payload expiring TTL from now and returns its signed token
func (c *Codec) Mint(subject, email, name string) (string, Payload, error) {
	p := Payload{
		Subject:   subject,
		Email:     email,
		Name:      name,
		ExpiresAt: c.now().Add(c.ttl).Unix(),
	}
	token, err := c.Sign(p)
	if err != nil {
		return "", Payload{}, err
	}
	return token, p, nil
}

// Sign encodes p and appends its signature
func (c *Codec) Sign(p Payload) (string, error) {
	if !c.Configured() {
		return "", ErrNoSecret
	}
	if p.Subject == "" || p.Email == "" {
		return "", fmt.Errorf("%w: subject and email are required", ErrInvalidPayload)
	}

	encoded, err := EncodePayload(p)
	if err != nil {
		return "", err
	}
	return encoded + "." + crypto.SignData(encoded, c.secret), nil
}

// Parse validates structure, signature and expiry of token, in that order.
// The signature is checked before the payload is decoded.
func (c *Codec) Parse(token string) (Payload, error) {
	encoded, signature, err := splitToken(token)
	if err != nil {
		return Payload{}, err
	}

	if !crypto.ValidateSignedData(encoded, signature, c.secret) {
		return Payload{}, ErrBadSignature
	}

	p, err := DecodePayload(encoded)
	if err != nil {
		return Payload{}, err
	}

	if c.now().Unix() >= p.ExpiresAt {
		return Payload{}, ErrExpired
	}

	return p, nil
}

func splitToken(token string) (string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrMalformedToken
	}
	return parts[0], parts[1], nil
}
