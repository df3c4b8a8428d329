// Newsletter signup HTTP handler.
//
// Exposes POST /api/newsletter-signup. Signups are idempotent per address:
// repeats report "already subscribed" and a previously unsubscribed address
// is quietly reactivated.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/services"
)

// NewsletterRequest is the JSON payload for the signup endpoint.
type NewsletterRequest struct {
	Email string `json:"email" example:"ada@example.com"`
	// Source records which page or widget produced the signup.
	Source string `json:"source,omitempty" example:"footer"`
}

// NewsletterSignup godoc
// @ID          newsletterSignup
// @Summary     Subscribe to the newsletter
// @Tags        Newsletter
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.NewsletterRequest  true  "Signup payload"
//
// @Success     200  {object}  map[string]any  "Already subscribed or reactivated"
// @Success     201  {object}  map[string]any  "Newly subscribed"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid email"
// @Failure     500  {object}  handlers.ErrorResponse  "Datastore failure"
// @Router      /newsletter-signup [post]
func (h *Handlers) NewsletterSignup(c *gin.Context) {
	var req NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgEmailRequired, nil)
		return
	}

	meta := services.LeadMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	outcome, err := h.newsSvc.Subscribe(c.Request.Context(), req.Email, req.Source, meta)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, msgEmailRequired, nil)
		return
	case errors.Is(err, services.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, msgInvalidEmail, nil)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, msgSubscribeFailed, err)
		return
	}

	switch outcome {
	case services.AlreadySubscribed:
		ok(c, http.StatusOK, gin.H{"message": "Already subscribed", "alreadySubscribed": true})
	case services.Reactivated:
		ok(c, http.StatusOK, gin.H{"message": "Subscription reactivated", "reactivated": true})
	default:
		ok(c, http.StatusCreated, gin.H{"message": "Successfully subscribed", "success": true})
	}
}
