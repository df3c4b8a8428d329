// Transport optimizer HTTP handler.
//
// Exposes the driver-assignment demo:
//   - GET  /api/transport-optimizer  (service info)
//   - POST /api/transport-optimizer  (rank the demo fleet for a trip)
//
// The endpoint is stateless and deterministic for a given trip and clock; it
// ranks the fixed demo fleet with the scoring in internal/dispatch.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ruralweb/leadgen-backend/internal/dispatch"
)

// OptimizeRequest is the JSON payload for the ranking endpoint.
type OptimizeRequest struct {
	Trip *dispatch.Trip `json:"trip"`
}

// OptimizerInfo godoc
// @ID          optimizerInfo
// @Summary     Describe the transport optimizer demo
// @Tags        Optimizer
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /transport-optimizer [get]
func (h *Handlers) OptimizerInfo(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"service":     "Medical Transport Route Optimizer",
		"version":     "1.0.0",
		"description": "AI-powered proximity-based driver assignment system",
		"endpoints": gin.H{
			"POST /api/transport-optimizer": "Calculate optimal driver for trip",
		},
		"demoDrivers": len(dispatch.DemoFleet()),
		"features": []string{
			"Real-time proximity calculation",
			"Multi-factor scoring algorithm",
			"Vehicle compatibility checking",
			"Time window validation",
			"Load balancing",
			"Haversine distance formula",
		},
	})
}

// Optimize godoc
// @ID          optimize
// @Summary     Rank the demo fleet for a trip
// @Tags        Optimizer
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.OptimizeRequest  true  "Trip payload"
//
// @Success     200  {object}  map[string]any
// @Failure     400  {object}  handlers.ErrorResponse  "Missing trip data"
// @Router      /transport-optimizer [post]
func (h *Handlers) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Trip == nil {
		fail(c, http.StatusBadRequest, msgMissingTrip, nil)
		return
	}

	now := time.Now()
	matches := dispatch.Rank(dispatch.DemoFleet(), *req.Trip, now)
	var best any
	if len(matches) > 0 {
		best = matches[0]
	}

	ok(c, http.StatusOK, gin.H{
		"success":   true,
		"trip":      req.Trip,
		"matches":   matches,
		"bestMatch": best,
		"timestamp": now.Format(time.RFC3339),
		"optimization": gin.H{
			"algorithm": "Proximity-Based Multi-Factor Scoring",
			"weights":   dispatch.Weights(),
		},
	})
}
