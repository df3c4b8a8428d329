// Contact-form HTTP handler.
//
// Exposes POST /api/contact, which forwards marketing-site contact
// submissions to the site owner's inbox via the mail service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/services"
)

// ContactRequest is the JSON payload for the contact endpoint. The snake_case
// interested_in key matches the form field the site has always posted.
type ContactRequest struct {
	Name         string `json:"name" example:"Ada Lovelace"`
	Email        string `json:"email" example:"ada@example.com"`
	Company      string `json:"company,omitempty"`
	Message      string `json:"message" example:"Looking for a site rebuild."`
	InterestedIn string `json:"interested_in,omitempty" example:"E-commerce"`
}

// Contact godoc
// @ID          contact
// @Summary     Submit the contact form
// @Tags        Contact
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ContactRequest  true  "Contact payload"
//
// @Success     200  {object}  map[string]bool
// @Failure     400  {object}  handlers.ErrorResponse  "Missing required fields"
// @Failure     500  {object}  handlers.ErrorResponse  "Delivery failure"
// @Router      /contact [post]
func (h *Handlers) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgInvalidJSON, nil)
		return
	}

	err := h.contactSvc.Submit(c.Request.Context(), services.ContactSubmission{
		Name:         req.Name,
		Email:        req.Email,
		Company:      req.Company,
		Message:      req.Message,
		InterestedIn: req.InterestedIn,
	})
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, msgMissingContactFields, nil)
		return
	case errors.Is(err, services.ErrNotConfigured):
		fail(c, http.StatusInternalServerError, msgMailNotConfigured, err)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, msgEmailSendFailed, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"success": true})
}
