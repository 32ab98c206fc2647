package handler

import (
	"net/http"

	"nearby/internal/middleware"
	"nearby/internal/models"
	"nearby/internal/service"
	apperrors "nearby/pkg/errors"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locations *service.LocationService
}

func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// GetLocation reports the caller's last stored short position.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	loc, err := h.locations.Current(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if loc == nil {
		c.JSON(http.StatusOK, gin.H{"visible": false})
		return
	}
	c.JSON(http.StatusOK, locationBody(loc))
}

// UpdateLocation takes the device's reading, or the reason it has none.
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Error     string   `json:"error"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	reading := service.Reading{Failure: apperrors.GeolocationReason(req.Error)}
	if req.Error == "" {
		if req.Latitude == nil || req.Longitude == nil {
			badRequest(c, "latitude and longitude are required")
			return
		}
		reading.Latitude, reading.Longitude = *req.Latitude, *req.Longitude
	}
	loc, err := h.locations.ReportReading(c.Request.Context(), userID, reading)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locationBody(loc))
}

func locationBody(loc *models.UserLocation) gin.H {
	return gin.H{
		"visible":         true,
		"short_latitude":  loc.ShortLatitude,
		"short_longitude": loc.ShortLongitude,
		"updated_at":      loc.UpdatedAt,
	}
}
