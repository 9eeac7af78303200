package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yourusername/trio-ev/internal/logger"
	"github.com/yourusername/trio-ev/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the request ID set by the request ID middleware.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// withRequestID reuses a well-formed incoming X-Request-ID or generates one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// withRequestLogging logs every request and records its HTTP metrics.
func withRequestLogging(log *logger.AccessLogger, routes map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			log.LogRequest(
				RequestIDFromContext(r.Context()),
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				float64(duration.Nanoseconds())/1e6,
				r.Header.Get("User-Agent"),
			)

			// Unknown paths share one label to keep cardinality bounded.
			route := r.URL.Path
			if !routes[route] {
				route = "other"
			}
			metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(wrapped.statusCode), duration.Seconds())
		})
	}
}

// securityHeaders adds essential security headers to all HTTP responses
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// The pages carry one inline <style> block and post only to themselves.
		w.Header().Set("Content-Security-Policy",
			"default-src 'none'; style-src 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'")

		next.ServeHTTP(w, r)
	})
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	limiters    map[string]*clientLimiter
	mu          sync.RWMutex
	rateLimit   rate.Limit
	burstSize   int
	idleTimeout time.Duration
	exemptPaths map[string]bool
	log         *logger.AccessLogger
	done        chan struct{}
	stopOnce    sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-IP limiter and starts its cleanup goroutine.
// Requests to exemptPaths are never limited. Call Stop to release it.
func NewRateLimiter(requestsPerSecond float64, burst int, exemptPaths []string, log *logger.AccessLogger) *RateLimiter {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}

	rl := &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		rateLimit:   rate.Limit(requestsPerSecond),
		burstSize:   burst,
		idleTimeout: 5 * time.Minute,
		exemptPaths: exempt,
		log:         log,
		done:        make(chan struct{}),
	}

	go rl.cleanupLoop(time.Minute)

	return rl
}

// getLimiter gets or creates a rate limiter for the given client
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	cl, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		cl.lastSeen = now
		rl.mu.Unlock()
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if cl, exists := rl.limiters[key]; exists {
		cl.lastSeen = now
		return cl.limiter
	}

	cl = &clientLimiter{
		limiter:  rate.NewLimiter(rl.rateLimit, rl.burstSize),
		lastSeen: now,
	}
	rl.limiters[key] = cl
	return cl.limiter
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exemptPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			metrics.RecordRateLimited()
			rl.log.LogRateLimited(RequestIDFromContext(r.Context()), ip, r.URL.Path)
			rl.sendRateLimitExceeded(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sendRateLimitExceeded sends a 429 Too Many Requests response
func (rl *RateLimiter) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := 1
	if rl.rateLimit > 0 && rl.rateLimit < 1 {
		retryAfter = int(1/float64(rl.rateLimit)) + 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: "rate limit exceeded"})
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops limiters not used within idleTimeout of now.
func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) > rl.idleTimeout {
			delete(rl.limiters, key)
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
