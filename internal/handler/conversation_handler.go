package handler

import (
	"net/http"

	"nearby/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Open renders the conversation with :user_id. Classification runs on every call.
func (h *ConversationHandler) Open(c *gin.Context) {
	viewer, err := viewerFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	detail, err := h.conversations.Open(c.Request.Context(), viewer, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ConversationHandler) Send(c *gin.Context) {
	viewer, err := viewerFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		MediaURL string `json:"media_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	msg, err := h.conversations.Send(c.Request.Context(), viewer, c.Param("user_id"), service.MessageDraft{
		Type:     req.Type,
		Text:     req.Text,
		MediaURL: req.MediaURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
