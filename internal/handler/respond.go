package handler

import (
	"errors"
	"net/http"
	"strconv"

	"nearby/internal/middleware"
	"nearby/internal/session"
	apperrors "nearby/pkg/errors"
	"nearby/pkg/location"

	"github.com/gin-gonic/gin"
)

var geolocationCodes = map[apperrors.GeolocationReason]string{
	apperrors.GeolocationPermissionDenied:    "GEOLOCATION_DENIED",
	apperrors.GeolocationPositionUnavailable: "GEOLOCATION_UNAVAILABLE",
	apperrors.GeolocationTimeout:             "GEOLOCATION_TIMEOUT",
}

// respondError maps service errors onto status codes. Anything unrecognised is a 500.
func respondError(c *gin.Context, err error) {
	var geo *apperrors.GeolocationError
	switch {
	case errors.As(err, &geo):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"code":    geolocationCodes[geo.Reason],
			"reason":  geo.Reason,
			"visible": false,
		})
	case apperrors.IsPersistence(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not save location", "code": "PERSISTENCE_FAILED", "visible": false})
	case apperrors.IsQuery(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nearby users are unavailable right now", "code": "PROXIMITY_UNAVAILABLE"})
	case errors.Is(err, apperrors.ErrNoCurrentUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "UNAUTHORIZED"})
	case errors.Is(err, apperrors.ErrReadOnlyConversation):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "CONVERSATION_READ_ONLY"})
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "code": "RATE_LIMITED"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, apperrors.ErrInvalidCoordinates),
		errors.Is(err, apperrors.ErrInvalidRange),
		errors.Is(err, apperrors.ErrInvalidMessage),
		errors.Is(err, apperrors.ErrInvalidProfile),
		errors.Is(err, apperrors.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "VALIDATION_FAILED"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION_FAILED"})
}

// viewerFromQuery builds the request's viewer from the token and the optional
// lat/lng query pair. Both absent means the viewer is hidden.
func viewerFromQuery(c *gin.Context) (session.Viewer, error) {
	userID := middleware.GetUserID(c)
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		return session.Hidden(userID), nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return session.Viewer{}, apperrors.ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return session.Viewer{}, apperrors.ErrInvalidCoordinates
	}
	if !location.ValidCoordinates(lat, lng) {
		return session.Viewer{}, apperrors.ErrInvalidCoordinates
	}
	return session.At(userID, lat, lng), nil
}
