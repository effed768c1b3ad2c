package visitorlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardlight/cardlight/internal/geoip"
	"github.com/cardlight/cardlight/internal/logging"
	"github.com/cardlight/cardlight/internal/metrics"
)

// Middleware logs one structured line per visitor request, enriched with a
// user-agent label and best-effort geolocation. Repeat requests from the
// same visitor within the dedup window are counted but not logged again, so
// a single page load does not flood the log.
type Middleware struct {
	logger    *logging.Logger
	geo       *geoip.Client
	seen      *SeenCache
	skipPaths map[string]struct{}
}

// New creates the visitor log middleware. window and maxEntries bound the
// dedup cache.
func New(logger *logging.Logger, geo *geoip.Client, window time.Duration, maxEntries int) *Middleware {
	return &Middleware{
		logger: logger,
		geo:    geo,
		seen:   NewSeenCache(window, maxEntries),
		skipPaths: map[string]struct{}{
			"/health":  {},
			"/metrics": {},
		},
	}
}

// Wrap returns the handler with visitor logging applied.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := m.skipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		ip := ClientIP(r)
		userAgent := r.Header.Get("User-Agent")
		if userAgent == "" {
			userAgent = "unknown"
		}

		if m.seen.Seen(ip + "|" + userAgent) {
			metrics.VisitorLogDeduped.Inc()
			next.ServeHTTP(w, r)
			return
		}

		referrer := r.Header.Get("Referer")
		if referrer == "" {
			referrer = "direct"
		}

		location := m.geo.Lookup(r.Context(), ip)

		m.logger.InfoContext(r.Context(), "visitor",
			"name", Label(userAgent),
			"ip", ip,
			"city", location.City,
			"region", location.Region,
			"country", location.Country,
			"latitude", location.Latitude,
			"longitude", location.Longitude,
			"isp", location.ISP,
			"method", r.Method,
			"path", r.URL.Path,
			"referrer", referrer,
		)

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
