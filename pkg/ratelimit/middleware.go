package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/skillbuilder/skillbuilder/pkg/logger"
)

// Middleware rejects requests over the limit with 429 and a JSON
// {"error": message} body. Limiter failures let the request through.
func Middleware(limiter Limiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			result, err := limiter.Allow(ctx, ClientKey(r))
			if err != nil {
				logger.G(ctx).WithError(err).Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			reset := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
			if reset < 0 {
				reset = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("RateLimit-Reset", strconv.Itoa(reset))

			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": message})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by the host part of RemoteAddr
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
