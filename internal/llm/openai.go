package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client on the OpenAI chat completions API.
type OpenAIClient struct {
	api      openai.Client
	throttle throttle
}

// NewOpenAIClient builds an OpenAI-backed Client. rps/burst configure the
// outbound call throttle; rps <= 0 disables it.
func NewOpenAIClient(apiKey string, rps float64, burst int) *OpenAIClient {
	return &OpenAIClient{
		api:      openai.NewClient(option.WithAPIKey(apiKey)),
		throttle: newThrottle(rps, burst),
	}
}

// Complete sends a chat completion request and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, string, error) {
	if err := c.throttle.wait(ctx); err != nil {
		return "", "", err
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", ErrNoCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", "", ErrNoCompletion
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return text, model, nil
}
