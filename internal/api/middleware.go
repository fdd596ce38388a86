/**
 * @description
 * HTTP middleware for the oracle-service. Rate limiting is applied per
 * endpoint group and keyed by client IP; the limiter backend is pluggable
 * (in-process or Redis). A limiter backend failure fails open so a Redis
 * outage cannot take the API down with it.
 */

package api

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facterra/oracle-service/internal/app"
)

// clientIP extracts the caller address, trusting the first X-Forwarded-For
// entry when present (the service runs behind a proxy in every deployment).
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit enforces a fixed-window limit per client IP for one endpoint
// group. The scope keeps separate endpoint groups from sharing a window.
func RateLimit(limiter app.RateLimiter, scope string, maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)

			result, err := limiter.Check(r.Context(), key, maxRequests, window)
			if err != nil {
				log.Printf("level=warn component=api msg=\"rate limiter backend failed; allowing request\" scope=%s err=%v", scope, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

			if !result.Allowed {
				log.Printf("level=warn component=api msg=\"rate limit exceeded\" scope=%s key=%s", scope, key)
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
