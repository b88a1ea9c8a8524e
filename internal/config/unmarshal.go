package config

import (
	"encoding/json"
	"fmt"
	"time"

	emailutil "github.com/dgellow/shop-admin/internal/emailutil"
)

// UnmarshalJSON implements custom unmarshaling for AuthConfig, resolving
// environment references and parsing durations
func (a *AuthConfig) UnmarshalJSON(data []byte) error {
	type rawAuth struct {
		GoogleClientID       json.RawMessage      `json:"googleClientId"`
		GoogleClientSecret   json.RawMessage      `json:"googleClientSecret"`
		GoogleRedirectURI    json.RawMessage      `json:"googleRedirectUri"`
		SessionSecret        json.RawMessage      `json:"sessionSecret"`
		AdminToken           json.RawMessage      `json:"adminToken"`
		SessionTTL           string               `json:"sessionTtl"`
		UpstreamTimeout      string               `json:"upstreamTimeout"`
		LandingPath          string               `json:"landingPath"`
		IdentityVerification IdentityVerification `json:"identityVerification"`
		AllowedDomains       []string             `json:"allowedDomains"`
		AdminEmails          []string             `json:"adminEmails"`
		AuthURL              string               `json:"authUrl"`
		TokenURL             string               `json:"tokenUrl"`
		TokenInfoURL         string               `json:"tokenInfoUrl"`
		JWKSURL              string               `json:"jwksUrl"`
	}

	var raw rawAuth
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.LandingPath = raw.LandingPath
	a.IdentityVerification = raw.IdentityVerification
	a.AllowedDomains = raw.AllowedDomains
	a.AuthURL = raw.AuthURL
	a.TokenURL = raw.TokenURL
	a.TokenInfoURL = raw.TokenInfoURL
	a.JWKSURL = raw.JWKSURL

	// Admin emails are compared normalized
	a.AdminEmails = make([]string, 0, len(raw.AdminEmails))
	for _, email := range raw.AdminEmails {
		a.AdminEmails = append(a.AdminEmails, emailutil.Normalize(email))
	}

	if raw.SessionTTL != "" {
		ttl, err := time.ParseDuration(raw.SessionTTL)
		if err != nil {
			return fmt.Errorf("parsing sessionTtl: %w", err)
		}
		a.SessionTTL = ttl
	}

	if raw.UpstreamTimeout != "" {
		timeout, err := time.ParseDuration(raw.UpstreamTimeout)
		if err != nil {
			return fmt.Errorf("parsing upstreamTimeout: %w", err)
		}
		a.UpstreamTimeout = timeout
	}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"googleClientId", raw.GoogleClientID, &a.GoogleClientID},
		{"googleRedirectUri", raw.GoogleRedirectURI, &a.GoogleRedirectURI},
	}
	for _, f := range fields {
		if f.raw == nil {
			continue
		}
		value, err := ParseConfigValue(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f.name, err)
		}
		*f.dst = value
	}

	secrets := []struct {
		name string
		raw  json.RawMessage
		dst  *Secret
	}{
		{"googleClientSecret", raw.GoogleClientSecret, &a.GoogleClientSecret},
		{"sessionSecret", raw.SessionSecret, &a.SessionSecret},
		{"adminToken", raw.AdminToken, &a.AdminToken},
	}
	for _, s := range secrets {
		if s.raw == nil {
			continue
		}
		value, err := ParseConfigValue(s.raw)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", s.name, err)
		}
		*s.dst = Secret(value)
	}

	return nil
}

// UnmarshalJSON implements custom unmarshaling for StorageConfig so the
// project id can come from the environment
func (s *StorageConfig) UnmarshalJSON(data []byte) error {
	type rawStorage struct {
		Kind                StorageKind     `json:"kind"`
		GCPProject          json.RawMessage `json:"gcpProject"`
		FirestoreDatabase   string          `json:"firestoreDatabase"`
		FirestoreCollection string          `json:"firestoreCollection"`
	}

	var raw rawStorage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Kind = raw.Kind
	s.FirestoreDatabase = raw.FirestoreDatabase
	s.FirestoreCollection = raw.FirestoreCollection

	if raw.GCPProject != nil {
		value, err := ParseConfigValue(raw.GCPProject)
		if err != nil {
			return fmt.Errorf("parsing gcpProject: %w", err)
		}
		s.GCPProject = value
	}

	return nil
}
