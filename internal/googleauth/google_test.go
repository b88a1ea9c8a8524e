package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgellow/shop-admin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-id.apps.googleusercontent.com"
	testClientSecret = "test-client-secret"
	testRedirectURI  = "https://admin.shop.example/api/auth/google/callback"
)

// fakeGoogle stands in for the token and tokeninfo endpoints
type fakeGoogle struct {
	server        *httptest.Server
	tokenInfo     map[string]any
	tokenStatus   int
	infoStatus    int
	omitIDToken   bool
	tokenDelay    time.Duration
	tokenRequests atomic.Int32
	infoRequests  atomic.Int32
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{
		tokenStatus: http.StatusOK,
		infoStatus:  http.StatusOK,
		tokenInfo: map[string]any{
			"aud":            testClientID,
			"iss":            "https://accounts.google.com",
			"sub":            "1234567890",
			"email":          "owner@shop.example",
			"email_verified": "true",
			"name":           "Shop Owner",
			"exp":            "9999999999",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests.Add(1)
		if f.tokenDelay > 0 {
			select {
			case <-time.After(f.tokenDelay):
			case <-r.Context().Done():
				return
			}
		}
		if f.tokenStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
			return
		}

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.FormValue("code"))
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, testClientID, r.FormValue("client_id"))
		assert.Equal(t, testClientSecret, r.FormValue("client_secret"))
		assert.Equal(t, testRedirectURI, r.FormValue("redirect_uri"))

		response := map[string]any{
			"access_token": "ya29.access",
			"token_type":   "Bearer",
			"expires_in":   3599,
		}
		if !f.omitIDToken {
			response["id_token"] = "header.payload.signature"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	})
	mux.HandleFunc("GET /tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		f.infoRequests.Add(1)
		assert.Equal(t, "header.payload.signature", r.URL.Query().Get("id_token"))
		if f.infoStatus != http.StatusOK {
			w.WriteHeader(f.infoStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.tokenInfo)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGoogle) authConfig() config.AuthConfig {
	return config.AuthConfig{
		GoogleClientID:     testClientID,
		GoogleClientSecret: config.Secret(testClientSecret),
		GoogleRedirectURI:  testRedirectURI,
		UpstreamTimeout:    2 * time.Second,
		TokenURL:           f.server.URL + "/token",
		TokenInfoURL:       f.server.URL + "/tokeninfo",
	}
}

func TestAuthURL(t *testing.T) {
	provider, err := NewProvider(config.AuthConfig{
		GoogleClientID:     testClientID,
		GoogleClientSecret: config.Secret(testClientSecret),
		GoogleRedirectURI:  testRedirectURI,
	})
	require.NoError(t, err)

	authURL, err := provider.AuthURL("/admin/products")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "/admin/products", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
}

func TestAuthURL_NotConfigured(t *testing.T) {
	for name, authConfig := range map[string]config.AuthConfig{
		"empty":           {},
		"no secret":       {GoogleClientID: testClientID, GoogleRedirectURI: testRedirectURI},
		"no redirect uri": {GoogleClientID: testClientID, GoogleClientSecret: testClientSecret},
		"no client id":    {GoogleClientSecret: testClientSecret, GoogleRedirectURI: testRedirectURI},
	} {
		t.Run(name, func(t *testing.T) {
			provider, err := NewProvider(authConfig)
			require.NoError(t, err)
			assert.False(t, provider.Configured())

			_, err = provider.AuthURL("/admin")
			assert.ErrorIs(t, err, ErrNotConfigured)

			_, err = provider.Authenticate(context.Background(), "code")
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

func TestNewProvider_UnknownMode(t *testing.T) {
	_, err := NewProvider(config.AuthConfig{IdentityVerification: "saml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saml")
}

func TestAuthenticate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := newFakeGoogle(t)
		provider, err := NewProvider(fake.authConfig())
		require.NoError(t, err)

		identity, err := provider.Authenticate(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "1234567890", identity.Subject)
		assert.Equal(t, "owner@shop.example", identity.Email)
		assert.Equal(t, "Shop Owner", identity.Name)
		assert.True(t, identity.EmailVerified)
		assert.Equal(t, testClientID, identity.Audience)
		assert.Equal(t, int32(1), fake.tokenRequests.Load())
		assert.Equal(t, int32(1), fake.infoRequests.Load())
	})

	t.Run("exchange rejected", func(t *testing.T) {
		fake := newFakeGoogle(t)
		fake.tokenStatus = http.StatusBadRequest
		provider, err := NewProvider(fake.authConfig())
		require.NoError(t, err)

		_, err = provider.Authenticate(context.Background(), "bad-code")
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, CodeExchangeFailed, upstream.Code)
		assert.Contains(t, upstream.Detail, "invalid_grant")
		assert.Equal(t, int32(1), fake.tokenRequests.Load(), "no retry")
		assert.Equal(t, int32(0), fake.infoRequests.Load())
	})

	t.Run("exchange timeout", func(t *testing.T) {
		fake := newFakeGoogle(t)
		fake.tokenDelay = time.Second
		authConfig := fake.authConfig()
		authConfig.UpstreamTimeout = 50 * time.Millisecond
		provider, err := NewProvider(authConfig)
		require.NoError(t, err)

		start := time.Now()
		_, err = provider.Authenticate(context.Background(), "good-code")
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, CodeExchangeFailed, upstream.Code)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("missing id_token", func(t *testing.T) {
		fake := newFakeGoogle(t)
		fake.omitIDToken = true
		provider, err := NewProvider(fake.authConfig())
		require.NoError(t, err)

		_, err = provider.Authenticate(context.Background(), "good-code")
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, CodeInvalidIdentity, upstream.Code)
	})

	tests := []struct {
		name   string
		mutate func(info map[string]any)
		detail string
	}{
		{
			name:   "audience mismatch",
			mutate: func(info map[string]any) { info["aud"] = "someone-else.apps.googleusercontent.com" },
			detail: "audience",
		},
		{
			name:   "foreign issuer",
			mutate: func(info map[string]any) { info["iss"] = "https://evil.example" },
			detail: "issuer",
		},
		{
			name:   "unverified email",
			mutate: func(info map[string]any) { info["email_verified"] = "false" },
			detail: "not verified",
		},
		{
			name:   "expired",
			mutate: func(info map[string]any) { info["exp"] = "1" },
			detail: "expired",
		},
		{
			name:   "missing email",
			mutate: func(info map[string]any) { delete(info, "email") },
			detail: "subject or email",
		},
		{
			name:   "missing subject",
			mutate: func(info map[string]any) { delete(info, "sub") },
			detail: "subject or email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGoogle(t)
			tt.mutate(fake.tokenInfo)
			provider, err := NewProvider(fake.authConfig())
			require.NoError(t, err)

			identity, err := provider.Authenticate(context.Background(), "good-code")
			assert.Nil(t, identity)
			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, CodeInvalidIdentity, upstream.Code)
			assert.Contains(t, upstream.Detail, tt.detail)
		})
	}

	t.Run("tokeninfo rejects token", func(t *testing.T) {
		fake := newFakeGoogle(t)
		fake.infoStatus = http.StatusBadRequest
		provider, err := NewProvider(fake.authConfig())
		require.NoError(t, err)

		_, err = provider.Authenticate(context.Background(), "good-code")
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, CodeInvalidIdentity, upstream.Code)
		assert.Contains(t, upstream.Detail, "400")
	})
}

func TestAuthenticate_VerifierErrorWrapped(t *testing.T) {
	fake := newFakeGoogle(t)
	verifier := verifierFunc(func(context.Context, string) (*Identity, error) {
		return nil, errors.New("boom")
	})
	provider := NewProviderWithVerifier(fake.authConfig(), verifier, nil)

	_, err := provider.Authenticate(context.Background(), "good-code")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, CodeInvalidIdentity, upstream.Code)
	assert.Equal(t, "identity token rejected", upstream.Detail)
}

type verifierFunc func(ctx context.Context, rawIDToken string) (*Identity, error)

func (f verifierFunc) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	return f(ctx, rawIDToken)
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"false"`, false, false},
		{`"yes"`, false, true},
		{`1`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var b flexBool
			err := json.Unmarshal([]byte(tt.input), &b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(b))
		})
	}
}
