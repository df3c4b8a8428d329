// Package llm wraps the chat-completion providers behind a small
// provider-neutral interface so the rest of the application never touches an
// SDK type directly. Two implementations exist: OpenAI chat completions and
// Google Gemini. Outbound calls are throttled per process as cost protection.
package llm

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// Message roles understood by both providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoCompletion is returned when the provider answers without any usable
// text (no choices, empty content, safety-filtered output).
var ErrNoCompletion = errors.New("llm: provider returned no completion")

// Message is one turn of a chat-completion request.
type Message struct {
	Role    string
	Content string
}

// Request is a provider-neutral chat-completion request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client produces a chat completion for a request. Implementations must be
// safe for concurrent use.
type Client interface {
	// Complete returns the assistant's reply text, along with the model name
	// that actually served the request.
	Complete(ctx context.Context, req Request) (text string, model string, err error)
}

// throttle gates outbound provider calls with a shared token bucket. Blocks
// until a token is available or ctx is done. rps <= 0 disables the throttle.
type throttle struct {
	lim *rate.Limiter
}

func newThrottle(rps float64, burst int) throttle {
	if rps <= 0 {
		return throttle{}
	}
	return throttle{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t throttle) wait(ctx context.Context) error {
	if t.lim == nil {
		return nil
	}
	return t.lim.Wait(ctx)
}
