package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsonwriter "github.com/dgellow/shop-admin/internal/json"
	"github.com/dgellow/shop-admin/internal/log"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
)

// HTTPServer owns the admin API listener
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

// Start blocks until the listener fails or Stop is called. A clean stop returns nil.
func (h *HTTPServer) Start() error {
	log.LogInfoWithFields("http", "Listening", map[string]any{"addr": h.srv.Addr})
	err := h.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop drains in-flight requests until ctx expires
func (h *HTTPServer) Stop(ctx context.Context) error {
	log.LogInfoWithFields("http", "Draining connections", map[string]any{"addr": h.srv.Addr})
	if err := h.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.LogInfoWithFields("http", "Listener closed", map[string]any{"addr": h.srv.Addr})
	return nil
}

// HealthHandler answers liveness probes. It never touches storage or Google.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	_ = jsonwriter.Write(w, map[string]string{"status": "ok"})
}
