package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"ragfilechat/internal/model"
	"ragfilechat/internal/platform/rabbitmq"
	"ragfilechat/internal/repository"
)

// FileUploader is the slice of the Gemini client the upload pipeline needs.
type FileUploader interface {
	Upload(ctx context.Context, localPath, mimeType string) (*genai.File, error)
}

// CleanupPublisher enqueues best-effort remote file deletions.
type CleanupPublisher interface {
	Publish(ctx context.Context, job rabbitmq.FileCleanupJob) error
}

type DocumentService struct {
	documentRepo *repository.DocumentRepository
	uploader     FileUploader
	cleanup      CleanupPublisher
	log          *zap.Logger
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	uploader FileUploader,
	cleanup CleanupPublisher,
	log *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		uploader:     uploader,
		cleanup:      cleanup,
		log:          log,
	}
}

type IngestInput struct {
	ScratchPath      string
	OriginalFilename string
	MimeType         string
	FileSize         int64
}

type DocumentPage struct {
	Documents []model.Document `json:"documents"`
	Total     int64            `json:"total"`
}

// Ingest relays an already-validated scratch file to Gemini and persists its
// metadata. The caller owns the scratch file and removes it afterwards.
func (s *DocumentService) Ingest(ctx context.Context, input IngestInput) (*model.Document, error) {
	if input.ScratchPath == "" || input.OriginalFilename == "" {
		return nil, ErrInvalidInput
	}

	file, err := s.uploader.Upload(ctx, input.ScratchPath, input.MimeType)
	if err != nil {
		s.log.Error("relay upload failed", zap.String("filename", input.OriginalFilename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	document := &model.Document{
		Filename:         input.OriginalFilename,
		OriginalFilename: input.OriginalFilename,
		MimeType:         input.MimeType,
		FileSize:         input.FileSize,
		GeminiURI:        file.URI,
		GeminiName:       file.Name,
		IsActive:         true,
	}
	if err := s.documentRepo.Create(document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.log.Info("document ingested",
		zap.Uint("document_id", document.ID),
		zap.String("filename", document.OriginalFilename),
		zap.Int64("size", document.FileSize),
	)
	return document, nil
}

func (s *DocumentService) List(skip, limit int, activeOnly bool) (*DocumentPage, error) {
	documents, total, err := s.documentRepo.List(skip, limit, activeOnly)
	if err != nil {
		return nil, err
	}
	return &DocumentPage{Documents: documents, Total: total}, nil
}

// Delete soft-deletes the local row, then asks the cleanup worker to remove
// the provider copy. The remote deletion is best-effort: enqueue failures are
// logged and never surfaced to the caller.
func (s *DocumentService) Delete(ctx context.Context, documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}

	document, err := s.documentRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if document == nil {
		return ErrDocumentNotFound
	}

	if _, err := s.documentRepo.SoftDelete(documentID); err != nil {
		return err
	}

	if s.cleanup != nil {
		job := rabbitmq.FileCleanupJob{
			DocumentID: document.ID,
			GeminiName: document.GeminiName,
		}
		if err := s.cleanup.Publish(ctx, job); err != nil {
			s.log.Warn("enqueue remote file cleanup failed",
				zap.Uint("document_id", document.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
