package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dgellow/shop-admin/internal/envutil"
	"github.com/dgellow/shop-admin/internal/log"
)

// SupportedVersion is the config schema version this build understands
const SupportedVersion = "v1"

// secretFields must be given as {"$env": "VAR"} references, never inline
var secretFields = []string{"googleClientSecret", "sessionSecret", "adminToken"}

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated Config from raw JSON
func Parse(data []byte) (Config, error) {
	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if version != SupportedVersion {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// The custom UnmarshalJSON methods resolve env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	ApplyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig validates the config structure before environment resolution
func validateRawConfig(rawConfig map[string]any) error {
	auth, ok := rawConfig["auth"].(map[string]any)
	if !ok {
		return nil
	}

	for _, name := range secretFields {
		value, exists := auth[name]
		if !exists {
			continue
		}
		if _, isString := value.(string); isString {
			return fmt.Errorf("%s must use environment variable reference for security", name)
		}
		if refMap, isMap := value.(map[string]any); isMap {
			if _, hasEnv := refMap["$env"]; !hasEnv {
				return fmt.Errorf("%s must use {\"$env\": \"VAR_NAME\"} format", name)
			}
		}
	}
	return nil
}

// ApplyDefaults fills unset optional fields
func ApplyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = DefaultAddr
	}
	if config.Server.Name == "" {
		config.Server.Name = DefaultName
	}
	if envutil.IsProduction() {
		config.Server.Production = true
	}

	if config.Auth.SessionTTL == 0 {
		config.Auth.SessionTTL = DefaultSessionTTL
	}
	if config.Auth.UpstreamTimeout == 0 {
		config.Auth.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if config.Auth.LandingPath == "" {
		config.Auth.LandingPath = DefaultLandingPath
	}
	if config.Auth.IdentityVerification == "" {
		config.Auth.IdentityVerification = IdentityVerificationTokenInfo
	}

	if config.Storage.Kind == "" {
		config.Storage.Kind = StorageKindMemory
	}
	if config.Storage.FirestoreCollection == "" {
		config.Storage.FirestoreCollection = DefaultFirestoreCollection
	}
}

// ValidateConfig validates the resolved configuration. Missing OAuth credentials
// are not an error: the login endpoints answer with a configuration error instead.
func ValidateConfig(config *Config) error {
	if config.Server.BaseURL == "" {
		return fmt.Errorf("server.baseURL is required")
	}

	if err := validateAuthConfig(&config.Auth); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	switch config.Storage.Kind {
	case StorageKindMemory:
	case StorageKindFirestore:
		if config.Storage.GCPProject == "" {
			return fmt.Errorf("storage.gcpProject is required when using firestore storage")
		}
	default:
		return fmt.Errorf("storage.kind must be 'memory' or 'firestore' (got %q)", config.Storage.Kind)
	}

	return nil
}

func validateAuthConfig(auth *AuthConfig) error {
	if auth.SessionSecret == "" {
		log.LogWarn("auth.sessionSecret is not set: browser sessions will be rejected")
	} else if len(auth.SessionSecret) < 32 {
		return fmt.Errorf("sessionSecret must be at least 32 characters (got %d). Generate with: shop-admin -gen-secret", len(auth.SessionSecret))
	}

	if !auth.OAuthConfigured() {
		log.LogWarn("Google OAuth client is not fully configured: browser login is disabled")
	}

	if auth.AdminToken != "" && len(auth.AdminToken) < 16 {
		return fmt.Errorf("adminToken must be at least 16 characters (got %d)", len(auth.AdminToken))
	}

	if auth.SessionTTL < 0 {
		return fmt.Errorf("sessionTtl cannot be negative")
	}
	if auth.UpstreamTimeout < 0 {
		return fmt.Errorf("upstreamTimeout cannot be negative")
	}

	if !strings.HasPrefix(auth.LandingPath, "/") || strings.HasPrefix(auth.LandingPath, "//") {
		return fmt.Errorf("landingPath must be a same-origin path starting with a single '/' (got %q)", auth.LandingPath)
	}

	switch auth.IdentityVerification {
	case IdentityVerificationTokenInfo, IdentityVerificationJWKS:
	default:
		return fmt.Errorf("identityVerification must be 'tokeninfo' or 'jwks' (got %q)", auth.IdentityVerification)
	}

	return nil
}
