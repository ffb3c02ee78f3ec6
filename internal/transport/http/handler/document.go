package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ragfilechat/internal/app"
	"ragfilechat/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	maxFileSize     int64
	allowedTypes    []string
	scratchDir      string
	log             *zap.Logger
}

func NewDocumentHandler(
	documentService *app.DocumentService,
	maxFileSize int64,
	allowedTypes []string,
	scratchDir string,
	log *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxFileSize:     maxFileSize,
		allowedTypes:    allowedTypes,
		scratchDir:      scratchDir,
		log:             log,
	}
}

// Upload validates size and MIME type before anything touches storage, writes
// the payload to a uniquely named scratch file, relays it to Gemini, and
// removes the scratch copy whether or not the relay succeeded.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}

	if file.Size > h.maxFileSize {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge,
			"file size exceeds maximum allowed size of "+strconv.FormatInt(h.maxFileSize, 10)+" bytes")
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if !slices.Contains(h.allowedTypes, mimeType) {
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedMediaType,
			"file type '"+mimeType+"' is not allowed")
		return
	}

	// Unique scratch name so concurrent uploads of identically named files
	// cannot collide.
	scratchPath := filepath.Join(h.scratchDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, scratchPath); err != nil {
		h.log.Error("write scratch file failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "document upload failed")
		return
	}
	defer func() {
		if err := os.Remove(scratchPath); err != nil {
			h.log.Warn("remove scratch file failed", zap.String("path", scratchPath), zap.Error(err))
		}
	}()

	document, err := h.documentService.Ingest(c.Request.Context(), app.IngestInput{
		ScratchPath:      scratchPath,
		OriginalFilename: file.Filename,
		MimeType:         mimeType,
		FileSize:         file.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUploadFailed):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			h.log.Error("document ingest failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "document upload failed")
		}
		return
	}

	response.OK(c, document)
}

func (h *DocumentHandler) List(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0)
	limit := parseIntQuery(c, "limit", 100)
	activeOnly := parseBoolQuery(c, "active_only", true)

	page, err := h.documentService.List(skip, limit, activeOnly)
	if err != nil {
		h.log.Error("list documents failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	response.OK(c, page)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, err := parseUintParam(c, "id")
	if err != nil || documentID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			h.log.Error("delete document failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_document_id": documentID})
}

func parseBoolQuery(c *gin.Context, key string, fallback bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
