// Package handlers defines the client-facing error messages used across all
// API endpoints.
//
// This file centralizes the strings the public widget and marketing site
// match on. They are part of the API contract: the chat widget displays them
// verbatim, so changing one is a breaking change for the frontend.
//
// Conventions:
//   - Messages are complete sentences or short phrases, safe to render as-is.
//   - Internal failure detail (provider errors, missing keys, SQL errors)
//     never appears here; it is logged server-side only.
package handlers

const (
	// Shared. The router's NoRoute/NoMethod fallbacks use the exported pair.
	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "Not found"

	msgInternalError = "Internal server error"
	msgInvalidJSON   = "Invalid JSON body"

	// Chat.
	msgMissingInput = "Missing input"
	// msgInputTooLong is a fmt pattern; the ceiling is configuration-driven.
	msgInputTooLong = "Input too long. Please keep messages under %d characters."

	// Contact.
	msgMissingContactFields = "Missing required fields: name, email, message"
	msgEmailSendFailed      = "Email send failed"
	msgMailNotConfigured    = "Email delivery is not configured"

	// Newsletter.
	msgEmailRequired   = "Email is required"
	msgInvalidEmail    = "Invalid email format"
	msgSubscribeFailed = "Failed to subscribe. Please try again later."

	// Transport optimizer.
	msgMissingTrip = "Missing trip data"
)
