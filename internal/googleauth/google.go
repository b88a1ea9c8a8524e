// Package googleauth drives the Google OpenID Connect login used by admins:
// building the authorization redirect, exchanging the returned code, and
// validating the ID token that comes back with it.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgellow/shop-admin/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	defaultJWKSURL      = "https://www.googleapis.com/oauth2/v3/certs"
)

// googleIssuers are the two issuer spellings Google uses in ID tokens
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Identity is the validated content of a Google ID token
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	HostedDomain  string `json:"hd"`
	Audience      string `json:"aud"`
	Issuer        string `json:"iss"`
}

// IdentityVerifier validates a raw ID token, including its audience
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

// Provider talks to Google on behalf of the login handlers
type Provider struct {
	oauth      oauth2.Config
	verifier   IdentityVerifier
	httpClient *http.Client
	timeout    time.Duration
}

// NewProvider builds a provider from the auth configuration. It succeeds even
// when the client is unconfigured; Configured reports that case.
func NewProvider(authConfig config.AuthConfig) (*Provider, error) {
	timeout := authConfig.UpstreamTimeout
	if timeout <= 0 {
		timeout = config.DefaultUpstreamTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	var verifier IdentityVerifier
	switch authConfig.IdentityVerification {
	case config.IdentityVerificationJWKS:
		jwksURL := authConfig.JWKSURL
		if jwksURL == "" {
			jwksURL = defaultJWKSURL
		}
		verifier = NewJWKSVerifier(authConfig.GoogleClientID, jwksURL, httpClient)
	case config.IdentityVerificationTokenInfo, "":
		tokenInfoURL := authConfig.TokenInfoURL
		if tokenInfoURL == "" {
			tokenInfoURL = defaultTokenInfoURL
		}
		verifier = NewTokenInfoVerifier(authConfig.GoogleClientID, tokenInfoURL, httpClient)
	default:
		return nil, fmt.Errorf("unknown identity verification mode %q", authConfig.IdentityVerification)
	}

	return NewProviderWithVerifier(authConfig, verifier, httpClient), nil
}

// NewProviderWithVerifier builds a provider around an explicit verifier
func NewProviderWithVerifier(authConfig config.AuthConfig, verifier IdentityVerifier, httpClient *http.Client) *Provider {
	timeout := authConfig.UpstreamTimeout
	if timeout <= 0 {
		timeout = config.DefaultUpstreamTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Provider{
		oauth:      newGoogleOAuth2Config(authConfig),
		verifier:   verifier,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// Configured reports whether client id, secret and redirect URI are all set
func (p *Provider) Configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != "" && p.oauth.RedirectURL != ""
}

// AuthURL generates the Google authorization URL carrying state
func (p *Provider) AuthURL(state string) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
	), nil
}

// Authenticate exchanges code for tokens and validates the returned ID token.
// Both outbound calls share one deadline; nothing is retried.
func (p *Provider) Authenticate(ctx context.Context, code string) (*Identity, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, exchangeError(describeExchangeFailure(err), err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, identityError("token response did not include an id_token", nil)
	}

	identity, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, upstream
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, identityError("identity provider timed out", err)
		}
		return nil, identityError("identity token rejected", err)
	}

	if identity.Subject == "" || identity.Email == "" {
		return nil, identityError("identity token is missing subject or email", nil)
	}

	return identity, nil
}

func describeExchangeFailure(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode != "" {
			return fmt.Sprintf("authorization code exchange failed: %s", retrieveErr.ErrorCode)
		}
		return fmt.Sprintf("authorization code exchange failed: status %d", retrieveErr.Response.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "identity provider timed out"
	}
	return "authorization code exchange failed"
}

// newGoogleOAuth2Config creates the OAuth2 config, honouring endpoint overrides
func newGoogleOAuth2Config(authConfig config.AuthConfig) oauth2.Config {
	endpoint := google.Endpoint
	if authConfig.AuthURL != "" {
		endpoint.AuthURL = authConfig.AuthURL
	}
	if authConfig.TokenURL != "" {
		endpoint.TokenURL = authConfig.TokenURL
	}

	return oauth2.Config{
		ClientID:     authConfig.GoogleClientID,
		ClientSecret: string(authConfig.GoogleClientSecret),
		RedirectURL:  authConfig.GoogleRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoint,
	}
}
