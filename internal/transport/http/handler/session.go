package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ragfilechat/internal/app"
	"ragfilechat/internal/transport/http/response"
)

type SessionHandler struct {
	chatService *app.ChatService
	log         *zap.Logger
}

type CreateSessionRequest struct {
	Title *string `json:"title" binding:"omitempty,max=255"`
}

func NewSessionHandler(chatService *app.ChatService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{chatService: chatService, log: log}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.CreateSession(app.CreateSessionInput{Title: req.Title})
	if err != nil {
		h.log.Error("create session failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}

	response.OK(c, session)
}

func (h *SessionHandler) List(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0)
	limit := parseIntQuery(c, "limit", 100)

	sessions, err := h.chatService.ListSessions(skip, limit)
	if err != nil {
		h.log.Error("list sessions failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}

	response.OK(c, sessions)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID, err := parseUintParam(c, "id")
	if err != nil || sessionID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	if err := h.chatService.DeleteSession(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			h.log.Error("delete session failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_session_id": sessionID})
}

func (h *SessionHandler) Messages(c *gin.Context) {
	sessionID, err := parseUintParam(c, "id")
	if err != nil || sessionID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	history, err := h.chatService.GetMessages(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			h.log.Error("get session messages failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get messages failed")
		}
		return
	}

	response.OK(c, history)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
