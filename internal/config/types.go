package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// StorageKind selects the login log backend
type StorageKind string

const (
	StorageKindMemory    StorageKind = "memory"
	StorageKindFirestore StorageKind = "firestore"
)

// IdentityVerification selects how the Google ID token from the code exchange is validated
type IdentityVerification string

const (
	// IdentityVerificationTokenInfo asks Google's tokeninfo endpoint to validate the token
	IdentityVerificationTokenInfo IdentityVerification = "tokeninfo"
	// IdentityVerificationJWKS verifies the token signature locally against Google's published keys
	IdentityVerificationJWKS IdentityVerification = "jwks"
)

const (
	DefaultAddr                = ":8080"
	DefaultName                = "shop-admin"
	DefaultSessionTTL          = 7 * 24 * time.Hour
	DefaultUpstreamTimeout     = 10 * time.Second
	DefaultLandingPath         = "/admin"
	DefaultFirestoreCollection = "shop_admin_logins"
)

// ServerConfig represents the HTTP listener configuration
type ServerConfig struct {
	BaseURL        string   `json:"baseURL"`
	Addr           string   `json:"addr"`
	Name           string   `json:"name"`
	Production     bool     `json:"production"`
	AllowedOrigins []string `json:"allowedOrigins"` // For CORS validation
}

// AuthConfig represents the admin authentication configuration with resolved values
type AuthConfig struct {
	GoogleClientID       string               `json:"googleClientId"`
	GoogleClientSecret   Secret               `json:"googleClientSecret"`
	GoogleRedirectURI    string               `json:"googleRedirectUri"`
	SessionSecret        Secret               `json:"sessionSecret"`
	AdminToken           Secret               `json:"adminToken"`
	SessionTTL           time.Duration        `json:"sessionTtl"`
	UpstreamTimeout      time.Duration        `json:"upstreamTimeout"`
	LandingPath          string               `json:"landingPath"`
	IdentityVerification IdentityVerification `json:"identityVerification"`
	AllowedDomains       []string             `json:"allowedDomains"`
	AdminEmails          []string             `json:"adminEmails"`

	// Endpoint overrides, empty means Google's production endpoints
	AuthURL      string `json:"authUrl,omitempty"`
	TokenURL     string `json:"tokenUrl,omitempty"`
	TokenInfoURL string `json:"tokenInfoUrl,omitempty"`
	JWKSURL      string `json:"jwksUrl,omitempty"`
}

// OAuthConfigured reports whether the Google client credentials are all present
func (a AuthConfig) OAuthConfigured() bool {
	return a.GoogleClientID != "" && a.GoogleClientSecret != "" && a.GoogleRedirectURI != ""
}

// StorageConfig represents the login log storage configuration
type StorageConfig struct {
	Kind                StorageKind `json:"kind"`
	GCPProject          string      `json:"gcpProject,omitempty"`
	FirestoreDatabase   string      `json:"firestoreDatabase,omitempty"`
	FirestoreCollection string      `json:"firestoreCollection,omitempty"`
}

// Config represents the config structure with resolved values
type Config struct {
	Version string        `json:"version"`
	Server  ServerConfig  `json:"server"`
	Auth    AuthConfig    `json:"auth"`
	Storage StorageConfig `json:"storage"`
}

// ParseConfigValue parses a JSON value that is either a plain string or an
// {"$env": "VAR_NAME"} reference resolved immediately.
func ParseConfigValue(raw json.RawMessage) (string, error) {
	// Try plain string first
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	// Try reference object
	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return "", fmt.Errorf("unknown reference type in config value")
	}

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return value, nil
}
