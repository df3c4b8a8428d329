package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client on the Google Gemini API.
//
// Gemini has no first-class system role in the contents list, so system
// messages are folded into SystemInstruction and the remaining turns become
// alternating user/model contents.
type GeminiClient struct {
	api      *genai.Client
	throttle throttle
}

// NewGeminiClient builds a Gemini-backed Client.
func NewGeminiClient(ctx context.Context, apiKey string, rps float64, burst int) (*GeminiClient, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{api: api, throttle: newThrottle(rps, burst)}, nil
}

// Complete sends a generate-content request and returns the reply text.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, string, error) {
	if err := c.throttle.wait(ctx); err != nil {
		return "", "", err
	}

	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := c.api.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", "", ErrNoCompletion
	}
	return text, req.Model, nil
}
