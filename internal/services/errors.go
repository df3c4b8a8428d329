// Package services defines the business logic for chat replies, lead capture,
// newsletter signups, and contact submissions. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrEmptyInput is returned when a chat request contains no input text.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInputTooLong is returned when a chat input exceeds the configured
	// character ceiling.
	ErrInputTooLong = errors.New("input too long")

	// ErrUpstream wraps a failure of the external chat-completion provider.
	// Handlers must report it generically; the detail is for logs only.
	ErrUpstream = errors.New("upstream chat provider failed")

	// ErrNotConfigured is returned when a service is invoked without its
	// required external dependency (API key, recipient address).
	ErrNotConfigured = errors.New("service not configured")

	// ErrMissingFields is returned when a submission omits required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidEmail is returned when a submitted email address fails
	// validation.
	ErrInvalidEmail = errors.New("invalid email address")
)
