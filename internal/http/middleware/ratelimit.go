// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file enforces the chat endpoint's fixed-window request quota. The
// counting itself lives in internal/ratelimit behind the Store interface; the
// middleware derives the client key, consults the store, stamps the quota
// headers, and rejects over-budget requests with 429.
//
// Notes:
//   - The default in-memory store is process-local. For horizontally scaled
//     deployments, wire the Redis-backed store to enforce a global limit.
//   - The quota is edge-level abuse control and cost protection; it is not an
//     authorization mechanism.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/ratelimit"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
)

// ClientKey derives the quota identity for a request: the first
// comma-separated X-Forwarded-For value if present, else the connection's
// remote address, else "unknown". Best-effort identity, spoofable by callers
// that control their own headers.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := fwd
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			first = fwd[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// ChatQuota returns a Gin middleware enforcing the chat quota against store.
//
// Every response passing through it carries X-RateLimit-Limit and
// X-RateLimit-Remaining, whether admitted or not. Denied requests are
// answered 429 with the { "success": false, "error": ... } envelope. A store
// error admits the request (fail open) rather than blocking chat.
func ChatQuota(store ratelimit.Store, limit int) gin.HandlerFunc {
	limitStr := strconv.Itoa(limit)
	return func(c *gin.Context) {
		allowed, remaining, err := store.Check(c.Request.Context(), ClientKey(c.Request))

		c.Header(headerRateLimitLimit, limitStr)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("quota check failed; admitting")
			c.Header(headerRateLimitRemaining, limitStr)
			c.Next()
			return
		}
		c.Header(headerRateLimitRemaining, strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
