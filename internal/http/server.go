// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ledger/internal/cache"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

const summaryCacheTTL = 30 * time.Second

type Server struct {
	http.Server
	ledger *services.LedgerService

	listLimit int

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	headers     *security.HeadersMiddleware
	tracer      *trace.Middleware

	// Summary is recomputed from the full record set, so mutations
	// invalidate it and reads within the TTL are served from cache.
	summaryCache *cache.LRUCache[services.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, listLimit int) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:       ledger,
		listLimit:    listLimit,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		summaryCache: cache.NewLRUCache[services.Summary](1, summaryCacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/records", s.withMiddleware(s.handleRecords))
	mux.HandleFunc("/records/", s.withMiddleware(s.handleRecordByID))
	mux.HandleFunc("/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/export", s.withMiddleware(s.handleExport))
	mux.HandleFunc("/import", s.withMiddleware(s.handleImport))

	return s
}

// withMiddleware wraps a handler with security headers, rate limiting on
// mutations, and request tracing.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	limited := func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
		}

		if r.Method != http.MethodGet && !s.rateLimiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	}

	chained := s.headers.Middleware(s.tracer.Middleware(http.HandlerFunc(limited)))
	return chained.ServeHTTP
}

// Shutdown stops background cleanup routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) invalidateSummary() {
	s.summaryCache.Delete(summaryCacheKey)
}

const summaryCacheKey = "summary"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
