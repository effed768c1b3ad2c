package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardlight/cardlight/internal/handlers"
	"github.com/cardlight/cardlight/internal/httputil"
	"github.com/cardlight/cardlight/internal/middleware"
	"github.com/cardlight/cardlight/internal/ratelimit"
	"github.com/cardlight/cardlight/internal/visitorlog"
)

// RouterConfig holds dependencies needed to configure routes
type RouterConfig struct {
	Handler     *handlers.Handler
	VisitorLog  *visitorlog.Middleware
	RateLimiter ratelimit.RateLimiter
	CORS        middleware.CORSConfig
	StaticDir   string
}

// NewRouter constructs a ServeMux with all backend routes registered and the
// middleware chain applied.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Analytics endpoints
	mux.Handle("POST /api/analytics/track",
		rateLimited(cfg.RateLimiter, http.HandlerFunc(cfg.Handler.TrackEvent)))
	mux.HandleFunc("GET /api/analytics/session/{id}", cfg.Handler.GetSessionTimeline)
	mux.HandleFunc("GET /api/analytics/visitor/{id}", cfg.Handler.GetVisitorHistory)
	mux.HandleFunc("GET /api/analytics/sessions", cfg.Handler.ListSessions)

	// Gift endpoints
	mux.HandleFunc("POST /api/gift/respond", cfg.Handler.SubmitGiftResponse)
	mux.HandleFunc("GET /api/gift/all", cfg.Handler.ListGiftResponses)

	// Health check and metrics
	mux.HandleFunc("GET /health", cfg.Handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Serve the card front end (must be last)
	if cfg.StaticDir != "" {
		mux.Handle("/", handlers.NewStaticHandler(cfg.StaticDir))
	}

	var h http.Handler = mux
	if cfg.VisitorLog != nil {
		h = cfg.VisitorLog.Wrap(h)
	}
	h = middleware.CORS(cfg.CORS)(h)
	return middleware.RequestID(h)
}

// rateLimited wraps a handler with the sliding-window limiter, keyed by
// client IP. Limiter errors fail open so a Redis outage never drops events.
func rateLimited(limiter ratelimit.RateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := limiter.Allow(r.Context(), visitorlog.ClientIP(r))
		if err == nil && !allowed {
			httputil.WriteError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
