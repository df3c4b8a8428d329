// Chat HTTP handler.
//
// This file exposes the assistant endpoint consumed by the site's chat
// widget:
//   - POST /api/openai-chat
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. After a successful
// reply has been written, the accumulated conversation is handed to the lead
// service for background extraction; that work never delays or fails the
// response.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/domain"
	"github.com/ruralweb/leadgen-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatService produces assistant replies for visitor input.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// Reply returns the assistant's answer and the model that produced it.
	Reply(ctx context.Context, input string, history []domain.ChatMessage) (text, model string, err error)
}

// LeadService mines finished conversations for contact details in the
// background. Fire-and-forget: implementations own their error handling.
type LeadService interface {
	ExtractAndSaveAsync(conv []domain.ChatMessage, meta services.LeadMeta)
}

// NewsletterService records newsletter signups.
type NewsletterService interface {
	Subscribe(ctx context.Context, email, source string, meta services.LeadMeta) (services.SubscribeOutcome, error)
}

// ContactService delivers contact-form submissions.
type ContactService interface {
	Submit(ctx context.Context, sub services.ContactSubmission) error
}

//
// Handler wiring
//

// Handlers groups the public API endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	chatSvc    ChatService
	leadSvc    LeadService
	newsSvc    NewsletterService
	contactSvc ContactService

	// maxInput is the chat input ceiling in characters, used only to phrase
	// the rejection message; enforcement lives in the chat service.
	maxInput int
}

// New constructs a Handlers instance bound to the given services. leadSvc may
// be nil to disable background lead extraction.
func New(chatSvc ChatService, leadSvc LeadService, newsSvc NewsletterService, contactSvc ContactService, maxInput int) *Handlers {
	return &Handlers{
		chatSvc:    chatSvc,
		leadSvc:    leadSvc,
		newsSvc:    newsSvc,
		contactSvc: contactSvc,
		maxInput:   maxInput,
	}
}

//
// DTOs
//

// ChatRequest is the JSON payload for the chat endpoint.
type ChatRequest struct {
	// Input is the visitor's message. Required.
	Input string `json:"input" example:"How much does a basic website cost?"`
	// ConversationHistory carries the prior turns of this session, oldest
	// first, so the model keeps context across stateless requests.
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
	// SessionID identifies the widget session; used to correlate leads for
	// visitors who never share an email address.
	SessionID string `json:"sessionId" example:"sess-8f14e45f"`
}

// ChatResponse is the success payload for the chat endpoint.
type ChatResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Model   string `json:"model"`
}

//
// Handlers
//

// Chat godoc
// @ID          chat
// @Summary     Generate an assistant reply
// @Description Answers a visitor message with the configured model. Rate limited per client; see X-RateLimit-* response headers.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ChatRequest  true  "Chat payload"
//
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or too-long input"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /openai-chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgMissingInput, nil)
		return
	}

	text, model, err := h.chatSvc.Reply(c.Request.Context(), req.Input, req.ConversationHistory)
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		fail(c, http.StatusBadRequest, msgMissingInput, nil)
		return
	case errors.Is(err, services.ErrInputTooLong):
		fail(c, http.StatusBadRequest, fmt.Sprintf(msgInputTooLong, h.maxInput), nil)
		return
	case err != nil:
		// Upstream/provider detail is logged, never echoed.
		fail(c, http.StatusInternalServerError, msgInternalError, err)
		return
	}

	ok(c, http.StatusOK, ChatResponse{Success: true, Text: text, Model: model})

	if h.leadSvc != nil {
		conv := make([]domain.ChatMessage, 0, len(req.ConversationHistory)+2)
		conv = append(conv, req.ConversationHistory...)
		conv = append(conv,
			domain.ChatMessage{Role: domain.RoleUser, Content: req.Input},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: text},
		)
		h.leadSvc.ExtractAndSaveAsync(conv, services.LeadMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Referrer:  c.Request.Referer(),
			SessionID: req.SessionID,
		})
	}
}
