package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ragfilechat/internal/app"
	"ragfilechat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	log         *zap.Logger
}

type ChatRequest struct {
	Query     string   `json:"query" binding:"required,min=1,max=5000"`
	SessionID uint     `json:"session_id"`
	FileURIs  []string `json:"file_uris"`
}

func NewChatHandler(chatService *app.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		SessionID: req.SessionID,
		Query:     req.Query,
		FileRefs:  req.FileURIs,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrGeneration):
			response.Error(c, http.StatusInternalServerError, response.CodeGenerationFailed, "gemini generation failed")
		default:
			h.log.Error("chat request failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		}
		return
	}

	response.OK(c, result)
}
