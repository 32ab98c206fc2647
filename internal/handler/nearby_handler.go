package handler

import (
	"net/http"
	"strconv"

	"nearby/internal/service"
	apperrors "nearby/pkg/errors"

	"github.com/gin-gonic/gin"
)

type NearbyHandler struct {
	proximity *service.ProximityService
	maxRange  float64
}

// NewNearbyHandler caps client-supplied ranges at maxRange degrees.
func NewNearbyHandler(proximity *service.ProximityService, maxRange float64) *NearbyHandler {
	return &NearbyHandler{proximity: proximity, maxRange: maxRange}
}

// Nearby lists users around lat/lng. The position is required here.
func (h *NearbyHandler) Nearby(c *gin.Context) {
	viewer, err := viewerFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !viewer.Visible() {
		badRequest(c, "lat and lng are required")
		return
	}
	rng := h.proximity.Range()
	if v := c.Query("range"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r > h.maxRange {
			respondError(c, apperrors.ErrInvalidRange)
			return
		}
		rng = r
	}
	matches, err := h.proximity.FindNearby(c.Request.Context(), viewer.UserID, *viewer.Position, rng)
	if err != nil {
		respondError(c, err)
		return
	}
	if matches == nil {
		matches = []service.NearbyMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
