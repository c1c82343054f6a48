package api

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"filamento/pkg/logging"
	"filamento/pkg/metrics"
)

var (
	mRequests    = metrics.Default.Counter("http_requests_total", "HTTP requests served")
	mServerErrs  = metrics.Default.Counter("http_responses_5xx_total", "HTTP responses with a 5xx status")
	mRateLimited = metrics.Default.Counter("http_rate_limited_total", "Requests rejected by the rate limiter")
	mPanics      = metrics.Default.Counter("http_panics_total", "Handler panics recovered")
	hReqMs       = metrics.Default.Histogram("http_request_duration_ms", "HTTP request latency in milliseconds", []float64{1, 5, 10, 25, 50, 100, 250, 1000})
)

// statusWriter captures the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.status = http.StatusOK
		w.wrote = true
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger tags each request with an id and logs method, path, status
// and duration once it completes. It also feeds the request metrics.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	cl := logger.WithComponent("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := hReqMs.Start()
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := logging.WithRequestID(r.Context(), id)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			dur := timer.Observe()
			mRequests.Inc()
			if sw.status >= 500 {
				mServerErrs.Inc()
			}
			cl.InfoContext(ctx, "request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", sw.status),
				logging.Duration("duration", dur))
		})
	}
}

// Recover turns handler panics into a 500 JSON response.
func Recover(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	cl := logger.WithComponent("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					mPanics.Inc()
					cl.Error("panic recovered", fmt.Errorf("%v", rec), logging.String("path", r.URL.Path))
					writeJSON(w, http.StatusInternalServerError, errorBody{
						Error:  http.StatusText(http.StatusInternalServerError),
						Status: http.StatusInternalServerError,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS sets the allowed origin and answers preflight requests.
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Tracing wraps the handler in an OpenTelemetry server span.
func Tracing(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service)
	}
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	swept   time.Time
	now     func() time.Time
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows rps requests per second per client with the given burst.
// Buckets idle for longer than ttl are dropped.
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		swept:   time.Now(),
		now:     time.Now,
	}
}

// Allow reports whether the client may proceed now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.swept) > rl.ttl {
		for k, c := range rl.clients {
			if now.Sub(c.seen) > rl.ttl {
				delete(rl.clients, k)
			}
		}
		rl.swept = now
	}
	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = c
	}
	c.seen = now
	rl.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// Middleware rejects over-limit clients with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			mRateLimited.Inc()
			retry := 1
			if rl.limit > 0 && rl.limit < 1 {
				retry = int(math.Ceil(1 / float64(rl.limit)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error:  "rate limit exceeded",
				Status: http.StatusTooManyRequests,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the real client IP, honouring X-Forwarded-For and
// X-Real-IP from a reverse proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
