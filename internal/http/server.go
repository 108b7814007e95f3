// Package http serves prepared chart data as JSON.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"moviechart/internal/middleware/ratelimit"
	"moviechart/internal/middleware/security"
	"moviechart/internal/middleware/trace"
	"moviechart/internal/services"
)

// ChartService is what the handlers need from the chart service.
type ChartService interface {
	SourceName() string
	LineChart(ctx context.Context) (services.Result, error)
	Refresh(ctx context.Context, reason string) (services.Result, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	charts      ChartService
	checks      map[string]ReadinessCheck
	rateLimiter *ratelimit.Limiter
	proxies     []string
	started     time.Time

	shutdownOnce sync.Once
}

// Option customizes a Server.
type Option func(*Server)

// WithReadinessCheck adds a named check to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithTrustedProxies trusts forwarding headers from the given networks in
// addition to loopback and private ranges.
func WithTrustedProxies(cidrs ...string) Option {
	return func(s *Server) {
		s.proxies = append(s.proxies, cidrs...)
	}
}

// WithRefreshLimit overrides the per-client limit on refresh requests.
func WithRefreshLimit(cfg ratelimit.Config) Option {
	return func(s *Server) {
		s.rateLimiter.Stop()
		s.rateLimiter = ratelimit.NewLimiter(cfg)
	}
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, charts ChartService, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		charts:      charts,
		checks:      make(map[string]ReadinessCheck),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		started:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ips := security.NewIPResolver()
	for _, cidr := range s.proxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			slog.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	limited := s.rateLimiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/line-chart", s.handleLineChart)
	mux.Handle("POST /api/line-chart/refresh", limited(http.HandlerFunc(s.handleRefresh)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var h http.Handler = mux
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = trace.Middleware(ips.ClientIP)(h)
	s.Handler = h

	return s
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
