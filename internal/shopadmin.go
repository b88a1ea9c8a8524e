package internal

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgellow/shop-admin/internal/adminauth"
	"github.com/dgellow/shop-admin/internal/config"
	"github.com/dgellow/shop-admin/internal/googleauth"
	"github.com/dgellow/shop-admin/internal/log"
	"github.com/dgellow/shop-admin/internal/server"
	"github.com/dgellow/shop-admin/internal/session"
	"github.com/dgellow/shop-admin/internal/storage"
	"github.com/dgellow/shop-admin/internal/urlutil"
	"golang.org/x/sync/errgroup"
)

const (
	StartPath    = "/api/auth/google/start"
	CallbackPath = "/api/auth/google/callback"
	MePath       = "/api/auth/me"
	LogoutPath   = "/api/auth/logout"
	LoginsPath   = "/api/admin/logins"
	LoginPath    = "/api/admin/logins/{sub}"

	shutdownTimeout = 30 * time.Second
)

// ShopAdmin represents the complete admin API application
type ShopAdmin struct {
	config     config.Config
	httpServer *server.HTTPServer
	store      storage.LoginStore
}

// NewShopAdmin creates the application with all dependencies built
func NewShopAdmin(ctx context.Context, cfg config.Config) (*ShopAdmin, error) {
	log.LogInfoWithFields("shopadmin", "Building admin API", map[string]any{
		"baseURL":              cfg.Server.BaseURL,
		"production":           cfg.Server.Production,
		"oauthConfigured":      cfg.Auth.OAuthConfigured(),
		"identityVerification": string(cfg.Auth.IdentityVerification),
		"storage":              string(cfg.Storage.Kind),
	})

	warnOnRedirectMismatch(cfg)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	provider, err := googleauth.NewProvider(cfg.Auth)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to setup Google provider: %w", err)
	}

	handler := buildHTTPHandler(cfg, store, provider, server.NewMetrics())

	return &ShopAdmin{
		config:     cfg,
		httpServer: server.NewHTTPServer(handler, cfg.Server.Addr),
		store:      store,
	}, nil
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or the listener fails
func (s *ShopAdmin) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.LogInfoWithFields("shopadmin", "Starting admin API", map[string]any{
		"addr": s.config.Server.Addr,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.LogInfoWithFields("shopadmin", "Starting graceful shutdown", map[string]any{
			"timeout": shutdownTimeout.String(),
		})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Stop(shutdownCtx)
	})

	err := g.Wait()

	if closeErr := s.store.Close(); closeErr != nil {
		log.LogErrorWithFields("shopadmin", "Failed to close storage", map[string]any{
			"error": closeErr.Error(),
		})
	}

	if err != nil {
		return err
	}
	log.LogInfoWithFields("shopadmin", "Application shutdown complete", nil)
	return nil
}

// buildHTTPHandler creates the complete HTTP handler with all routing and middleware
func buildHTTPHandler(cfg config.Config, store storage.LoginStore, provider server.IdentityProvider, metrics *server.Metrics) http.Handler {
	codec := session.NewCodec([]byte(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL)
	authenticator := adminauth.NewAuthenticator(metrics,
		adminauth.NewStaticTokenChecker(string(cfg.Auth.AdminToken)),
		adminauth.NewCookieChecker(codec),
	)

	authHandlers := server.NewAuthHandlers(server.AuthHandlersConfig{
		Provider:      provider,
		Codec:         codec,
		Authenticator: authenticator,
		Policy:        adminauth.NewPolicy(cfg.Auth),
		Store:         store,
		Metrics:       metrics,
		LandingPath:   cfg.Auth.LandingPath,
		SecureCookie:  cfg.Server.Production,
	})
	adminHandlers := server.NewAdminHandlers(store)
	requireAdmin := server.NewRequireAdminMiddleware(authenticator)

	mux := http.NewServeMux()
	mux.Handle("GET /health", server.NewHealthHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET "+StartPath, authHandlers.StartHandler)
	mux.HandleFunc("GET "+CallbackPath, authHandlers.CallbackHandler)
	mux.HandleFunc("GET "+MePath, authHandlers.MeHandler)
	mux.HandleFunc("POST "+LogoutPath, authHandlers.LogoutHandler)

	mux.Handle("GET "+LoginsPath, server.ChainMiddleware(http.HandlerFunc(adminHandlers.ListLoginsHandler), requireAdmin))
	mux.Handle("GET "+LoginPath, server.ChainMiddleware(http.HandlerFunc(adminHandlers.GetLoginHandler), requireAdmin))

	return wrapHTTPHandler(mux, cfg.Server, metrics)
}

// wrapHTTPHandler applies the global middleware around mux. Recover sits
// innermost so a panic still reaches the access log and request metrics.
// No middleware between mux and metrics may replace the request, or the
// matched route pattern is lost.
func wrapHTTPHandler(mux *http.ServeMux, cfg config.ServerConfig, metrics *server.Metrics) http.Handler {
	return server.ChainMiddleware(mux,
		server.NewRecoverMiddleware("http"),
		server.NewMetricsMiddleware(metrics),
		server.NewCORSMiddleware(cfg.AllowedOrigins),
		server.NewLoggerMiddleware("http"),
		server.NewRequestIDMiddleware(),
	)
}

// warnOnRedirectMismatch flags a redirect URI that does not point at this server's callback route
func warnOnRedirectMismatch(cfg config.Config) {
	if cfg.Auth.GoogleRedirectURI == "" || cfg.Server.BaseURL == "" {
		return
	}
	expected, err := urlutil.AbsoluteURL(cfg.Server.BaseURL, CallbackPath)
	if err != nil {
		log.LogWarn("Could not derive callback URL from baseURL %s: %v", cfg.Server.BaseURL, err)
		return
	}
	if expected != cfg.Auth.GoogleRedirectURI {
		log.LogWarnWithFields("shopadmin", "googleRedirectUri does not match this server's callback route", map[string]any{
			"configured": cfg.Auth.GoogleRedirectURI,
			"expected":   expected,
		})
	}
}
