// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints.
// Every failure, whatever its source, is reported to the client in the same
// envelope so the browser widget can branch on a single shape:
//
//	HTTP/1.1 400 Bad Request
//	{ "success": false, "error": "Missing input" }
//
// Conventions:
//   - `fail()` centralizes error formatting and ensures 5xx responses are
//     logged with request context; the logged detail is never echoed to the
//     client.
//   - `ok()` writes success bodies; their shape is endpoint-specific but
//     always includes `success: true` where the endpoint reports one.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success"`
	// Human-readable message, safe to show to visitors. Upstream provider
	// errors are never surfaced here.
	Error string `json:"error" example:"Missing input"`
}

// fail aborts the request with the standard error envelope.
//
// Server errors (>=500) are logged with the request-scoped logger, including
// the underlying cause when one is supplied; the client only ever sees msg.
func fail(c *gin.Context, status int, msg string, cause error) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Err(cause).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: msg})
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg, nil) }

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
