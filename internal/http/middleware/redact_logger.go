// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the scrubbing variant of the access
// logger. A lead-capture API routinely sees visitor emails and phone numbers
// in query strings and headers; when redaction is enabled this middleware
// replaces Logger() entirely, so the request is logged exactly once and every
// logged value has passed through the scrub patterns.
//
// Design goals:
//   - Drop-in replacement for Logger(): same log shape, same request-scoped
//     logger under the "logger" context key, so fail() and services log
//     through it unchanged
//   - Default-safe: never logs request or response bodies
//   - Redacts common identifiers (emails, phone numbers, UUIDs) from the
//     query string, user agent, referer, and header values
//   - Masks sensitive headers (Authorization, Cookie, Set-Cookie, plus custom)
//
// Security note: this middleware reduces but does not eliminate the risk of
// sensitive data leaking to logs. Clients and upstream services should still
// avoid transmitting PII in query strings or headers unless strictly
// necessary.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// built-in sensitive headers ("Authorization", "Cookie", "Set-Cookie").
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns a Gin middleware that writes the structured access
// log with sensitive values scrubbed. Install it INSTEAD of Logger(), never
// alongside it: both emit one access line per request and both attach the
// request-scoped zerolog.Logger, so chaining them would double-log the
// request and put the unscrubbed values right next to the scrubbed ones.
//
// Behavior:
//   - Logs the same fields as Logger() (request_id, method, path, remote IP,
//     user agent, referer, query, sizes, status, latency) plus the scrubbed
//     request headers.
//   - The query string is percent-decoded before scrubbing so encoded PII
//     (email=jane%40example.com) still matches the patterns.
//   - Applies regex-based substitution to redact email addresses, phone
//     numbers, and UUID-like identifiers; fully masks built-in sensitive
//     headers and any in opts.MaskHeaders.
//   - Stores a request-scoped logger (with the scrubbed fields) under the
//     "logger" context key for LoggerFrom.
//
// NOTE: redact UUIDs *before* phone numbers to avoid the phone pattern
// accidentally matching the digit/hyphen segments of a UUID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Compile regex patterns once.
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from UUIDs).
	// Examples matched: "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := s
		// Order matters: IDs → email → phone (phone is the loosest).
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
		return out
	}

	// Build header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		safeQuery := redact(decodedQuery(c.Request.URL.RawQuery))

		// Scrub headers.
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		l := log.With().
			Str("request_id", resolveRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", redact(c.Request.UserAgent())).
			Str("referer", redact(c.Request.Referer())).
			Str("query", truncate(safeQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()

		// Downstream code logs through the scrubbed logger.
		c.Set("logger", &l)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		ev := l.With().
			Int("status", status).
			Dur("latency", latency).
			Int("bytes_out", c.Writer.Size()).
			Interface("headers", safeHeaders).
			Logger()

		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// resolveRequestID finds the correlation ID wherever it was left: the Gin
// context (set by RequestID()), the response header, or the request header.
func resolveRequestID(c *gin.Context) string {
	if rid, ok := c.Get(requestIDKey); ok {
		if s := asString(rid); s != "" {
			return s
		}
	}
	if rid := c.Writer.Header().Get(requestIDHeader); rid != "" {
		return rid
	}
	return c.GetHeader(requestIDHeader)
}

// decodedQuery percent-decodes a raw query string so encoded PII still
// matches the scrub patterns. Undecodable input is scrubbed as-is.
func decodedQuery(raw string) string {
	if dec, err := url.QueryUnescape(raw); err == nil {
		return dec
	}
	return raw
}
