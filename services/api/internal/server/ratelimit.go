package server

import (
	"math"
	"net/http"
	"strconv"

	"soundboard/internal/util"
)

// withRateLimit throttles POST requests per client IP. Other methods pass through.
func (s *Server) withRateLimit(scope string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || r.Method != http.MethodPost {
			next(w, r)
			return
		}
		ip := util.ClientIP(r, s.trusted)
		decision, err := s.limiter.Allow(r.Context(), scope+":"+ip)
		if err != nil {
			util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "scope", scope, "err", err)
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retry := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next(w, r)
	})
}
