package handler

import (
	"net/http"

	"nearby/internal/middleware"
	"nearby/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName string  `json:"display_name" binding:"required"`
		Username    string  `json:"username"`
		AvatarURL   string  `json:"avatar_url"`
		Bio         string  `json:"bio"`
		Instagram   *string `json:"instagram"`
		Twitter     *string `json:"twitter"`
		LinkedIn    *string `json:"linkedin"`
		Website     *string `json:"website"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), middleware.GetUserID(c), service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		Instagram:   req.Instagram,
		Twitter:     req.Twitter,
		LinkedIn:    req.LinkedIn,
		Website:     req.Website,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
