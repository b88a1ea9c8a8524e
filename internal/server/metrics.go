package server

import (
	"net/http"
	"strconv"

	"github.com/dgellow/shop-admin/internal/adminauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Callback outcomes recorded by OAuthCallbacksTotal
const (
	callbackSuccess         = "success"
	callbackProviderError   = "provider_error"
	callbackBadRequest      = "bad_request"
	callbackMisconfigured   = "misconfigured"
	callbackExchangeFailed  = "exchange_failed"
	callbackInvalidIdentity = "invalid_identity"
	callbackDenied          = "denied"
	callbackError           = "error"
)

// Metrics holds the Prometheus collectors for the admin API
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthChecksTotal     *prometheus.CounterVec
	OAuthCallbacksTotal *prometheus.CounterVec
}

var _ adminauth.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_admin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_admin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_admin_auth_checks_total",
				Help: "Credential checks run by the admin authenticator",
			},
			[]string{"checker", "result"},
		),
		OAuthCallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_admin_oauth_callbacks_total",
				Help: "Google OAuth callbacks by outcome",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthChecksTotal,
		m.OAuthCallbacksTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAuthCheck implements adminauth.Observer
func (m *Metrics) ObserveAuthCheck(checker string, result adminauth.Result) {
	m.AuthChecksTotal.WithLabelValues(checker, string(result)).Inc()
}

func (m *Metrics) observeCallback(result string) {
	m.OAuthCallbacksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observeRequest(method, route string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
