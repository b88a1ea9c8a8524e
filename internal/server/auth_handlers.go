package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/dgellow/shop-admin/internal/adminauth"
	"github.com/dgellow/shop-admin/internal/cookie"
	"github.com/dgellow/shop-admin/internal/googleauth"
	jsonwriter "github.com/dgellow/shop-admin/internal/json"
	"github.com/dgellow/shop-admin/internal/log"
	"github.com/dgellow/shop-admin/internal/session"
	"github.com/dgellow/shop-admin/internal/storage"
	"github.com/dgellow/shop-admin/internal/urlutil"
)

// IdentityProvider is the part of googleauth.Provider the login handlers use
type IdentityProvider interface {
	Configured() bool
	AuthURL(state string) (string, error)
	Authenticate(ctx context.Context, code string) (*googleauth.Identity, error)
}

// AuthHandlers serves the Google login, session introspection and logout endpoints
type AuthHandlers struct {
	provider      IdentityProvider
	codec         *session.Codec
	authenticator *adminauth.Authenticator
	policy        adminauth.Policy
	store         storage.LoginStore
	metrics       *Metrics
	landingPath   string
	secureCookie  bool
}

// AuthHandlersConfig carries the collaborators for NewAuthHandlers
type AuthHandlersConfig struct {
	Provider      IdentityProvider
	Codec         *session.Codec
	Authenticator *adminauth.Authenticator
	Policy        adminauth.Policy
	Store         storage.LoginStore
	Metrics       *Metrics
	LandingPath   string
	SecureCookie  bool
}

// NewAuthHandlers creates new auth handlers with dependency injection
func NewAuthHandlers(cfg AuthHandlersConfig) *AuthHandlers {
	landingPath := cfg.LandingPath
	if landingPath == "" {
		landingPath = "/admin"
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &AuthHandlers{
		provider:      cfg.Provider,
		codec:         cfg.Codec,
		authenticator: cfg.Authenticator,
		policy:        cfg.Policy,
		store:         cfg.Store,
		metrics:       metrics,
		landingPath:   landingPath,
		secureCookie:  cfg.SecureCookie,
	}
}

type meUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Sub   string `json:"sub"`
}

type meResponse struct {
	Authenticated bool    `json:"authenticated"`
	User          *meUser `json:"user,omitempty"`
}

// StartHandler redirects the browser to Google's consent screen
func (h *AuthHandlers) StartHandler(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		log.LogError("Google login requested but OAuth client is not configured")
		jsonwriter.WriteError(w, http.StatusInternalServerError, "oauth_not_configured", "")
		return
	}

	state := urlutil.SafeRedirectPath(r.URL.Query().Get("from"), h.landingPath)

	authURL, err := h.provider.AuthURL(state)
	if err != nil {
		log.LogError("Failed to build Google authorization URL: %v", err)
		jsonwriter.WriteError(w, http.StatusInternalServerError, "oauth_not_configured", "")
		return
	}

	log.LogDebugWithFields("auth", "Redirecting to Google", map[string]any{
		"returnPath": state,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler completes the Google login and sets the admin session cookie
func (h *AuthHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if errMsg := query.Get("error"); errMsg != "" {
		log.LogWarnWithFields("auth", "Google returned an OAuth error", map[string]any{
			"error":       errMsg,
			"description": query.Get("error_description"),
		})
		h.metrics.observeCallback(callbackProviderError)
		jsonwriter.WriteError(w, http.StatusBadRequest, "oauth_error", errMsg)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.metrics.observeCallback(callbackBadRequest)
		jsonwriter.WriteError(w, http.StatusBadRequest, "missing_code", "")
		return
	}
	if !h.provider.Configured() {
		h.metrics.observeCallback(callbackMisconfigured)
		jsonwriter.WriteError(w, http.StatusBadRequest, "oauth_not_configured", "")
		return
	}
	if !h.codec.Configured() {
		log.LogError("Google callback received but session secret is not configured")
		h.metrics.observeCallback(callbackMisconfigured)
		jsonwriter.WriteError(w, http.StatusInternalServerError, "session_not_configured", "")
		return
	}

	identity, err := h.provider.Authenticate(ctx, code)
	if err != nil {
		h.writeAuthenticateError(w, err)
		return
	}

	if !h.policy.Allows(identity.Email) {
		log.LogWarnWithFields("auth", "Google account not permitted", map[string]any{
			"email": identity.Email,
		})
		h.metrics.observeCallback(callbackDenied)
		jsonwriter.WriteError(w, http.StatusUnauthorized, googleauth.CodeInvalidIdentity, "account is not permitted to administer this shop")
		return
	}

	token, payload, err := h.codec.Mint(identity.Subject, identity.Email, identity.Name)
	if err != nil {
		log.LogError("Failed to mint admin session: %v", err)
		h.metrics.observeCallback(callbackError)
		jsonwriter.WriteError(w, http.StatusInternalServerError, "auth_error", "")
		return
	}

	if h.store != nil {
		if err := h.store.RecordLogin(ctx, identity.Subject, identity.Email, identity.Name); err != nil {
			log.LogWarnWithFields("auth", "Failed to record login", map[string]any{
				"email": identity.Email,
				"error": err.Error(),
			})
		}
	}

	cookie.SetSession(w, token, h.codec.TTL(), h.secureCookie)

	returnPath := urlutil.SafeRedirectPath(query.Get("state"), h.landingPath)
	log.LogInfoWithFields("auth", "Admin session created", map[string]any{
		"email":      payload.Email,
		"expiresAt":  payload.ExpiresAt,
		"returnPath": returnPath,
	})
	h.metrics.observeCallback(callbackSuccess)
	http.Redirect(w, r, returnPath, http.StatusFound)
}

func (h *AuthHandlers) writeAuthenticateError(w http.ResponseWriter, err error) {
	var upstream *googleauth.UpstreamError
	switch {
	case errors.Is(err, googleauth.ErrNotConfigured):
		h.metrics.observeCallback(callbackMisconfigured)
		jsonwriter.WriteError(w, http.StatusBadRequest, "oauth_not_configured", "")
	case errors.As(err, &upstream):
		log.LogWarnWithFields("auth", "Google login rejected", map[string]any{
			"code":  upstream.Code,
			"error": upstream.Error(),
		})
		if upstream.Code == googleauth.CodeExchangeFailed {
			h.metrics.observeCallback(callbackExchangeFailed)
		} else {
			h.metrics.observeCallback(callbackInvalidIdentity)
		}
		jsonwriter.WriteError(w, http.StatusUnauthorized, upstream.Code, upstream.Detail)
	default:
		log.LogError("Google login failed: %v", err)
		h.metrics.observeCallback(callbackError)
		jsonwriter.WriteError(w, http.StatusInternalServerError, "auth_error", "")
	}
}

// MeHandler reports whether the caller holds admin credentials
func (h *AuthHandlers) MeHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.authenticator.Authenticate(r)
	if !ok {
		_ = jsonwriter.WriteResponse(w, http.StatusUnauthorized, meResponse{Authenticated: false})
		return
	}

	_ = jsonwriter.Write(w, meResponse{
		Authenticated: true,
		User: &meUser{
			Email: principal.Email,
			Name:  principal.Name,
			Sub:   principal.Subject,
		},
	})
}

// LogoutHandler clears the admin session cookie. It always succeeds.
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie.ClearSession(w, h.secureCookie)
	_ = jsonwriter.Write(w, map[string]bool{"ok": true})
}
