package handler

import (
	"net/http"

	"nearby/internal/middleware"
	"nearby/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feed *service.FeedService
}

func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

func (h *FeedHandler) Feed(c *gin.Context) {
	viewer, err := viewerFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.feed.Feed(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	var req struct {
		Text     string `json:"text"`
		MediaURL string `json:"media_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	post, err := h.feed.CreatePost(c.Request.Context(), middleware.GetUserID(c), req.Text, req.MediaURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}
