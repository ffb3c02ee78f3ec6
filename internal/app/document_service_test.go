package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"ragfilechat/internal/model"
	"ragfilechat/internal/platform/rabbitmq"
	"ragfilechat/internal/repository"
)

type fakeUploader struct {
	err  error
	file *genai.File
}

func (f *fakeUploader) Upload(_ context.Context, _, _ string) (*genai.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.file, nil
}

type fakePublisher struct {
	err  error
	jobs []rabbitmq.FileCleanupJob
}

func (f *fakePublisher) Publish(_ context.Context, job rabbitmq.FileCleanupJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func TestIngestPersistsMetadata(t *testing.T) {
	db := newTestDB(t)
	uploader := &fakeUploader{file: &genai.File{
		Name: "files/abc123",
		URI:  "https://files.example/abc123",
	}}
	svc := NewDocumentService(repository.NewDocumentRepository(db), uploader, nil, zap.NewNop())

	doc, err := svc.Ingest(context.Background(), IngestInput{
		ScratchPath:      "/tmp/scratch-abc",
		OriginalFilename: "report.pdf",
		MimeType:         "application/pdf",
		FileSize:         2048,
	})
	require.NoError(t, err)
	assert.NotZero(t, doc.ID)
	assert.Equal(t, "report.pdf", doc.OriginalFilename)
	assert.Equal(t, "files/abc123", doc.GeminiName)
	assert.Equal(t, "https://files.example/abc123", doc.GeminiURI)
	assert.True(t, doc.IsActive)

	got, err := repository.NewDocumentRepository(db).GetByID(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2048), got.FileSize)
}

func TestIngestRelayFailure(t *testing.T) {
	db := newTestDB(t)
	uploader := &fakeUploader{err: errors.New("provider unavailable")}
	svc := NewDocumentService(repository.NewDocumentRepository(db), uploader, nil, zap.NewNop())

	_, err := svc.Ingest(context.Background(), IngestInput{
		ScratchPath:      "/tmp/scratch-abc",
		OriginalFilename: "report.pdf",
		MimeType:         "application/pdf",
		FileSize:         2048,
	})
	assert.ErrorIs(t, err, ErrUploadFailed)

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeletePublishesCleanup(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewDocumentRepository(db)
	publisher := &fakePublisher{}
	svc := NewDocumentService(repo, &fakeUploader{}, publisher, zap.NewNop())

	doc := &model.Document{
		Filename:         "report.pdf",
		OriginalFilename: "report.pdf",
		MimeType:         "application/pdf",
		FileSize:         100,
		GeminiURI:        "https://files.example/abc",
		GeminiName:       "files/abc",
		IsActive:         true,
	}
	require.NoError(t, repo.Create(doc))

	require.NoError(t, svc.Delete(context.Background(), doc.ID))

	got, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, "files/abc", publisher.jobs[0].GeminiName)
	assert.Equal(t, doc.ID, publisher.jobs[0].DocumentID)
}

func TestDeleteSurvivesPublishFailure(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewDocumentRepository(db)
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewDocumentService(repo, &fakeUploader{}, publisher, zap.NewNop())

	doc := &model.Document{
		Filename:         "report.pdf",
		OriginalFilename: "report.pdf",
		MimeType:         "application/pdf",
		FileSize:         100,
		GeminiURI:        "https://files.example/abc",
		GeminiName:       "files/abc",
		IsActive:         true,
	}
	require.NoError(t, repo.Create(doc))

	// The remote cleanup is best-effort: a publish failure must not surface.
	require.NoError(t, svc.Delete(context.Background(), doc.ID))

	got, err := repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDeleteMissingDocument(t *testing.T) {
	db := newTestDB(t)
	svc := NewDocumentService(repository.NewDocumentRepository(db), &fakeUploader{}, &fakePublisher{}, zap.NewNop())

	err := svc.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListPassesThrough(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewDocumentRepository(db)
	svc := NewDocumentService(repo, &fakeUploader{}, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&model.Document{
			Filename:         "f.pdf",
			OriginalFilename: "f.pdf",
			MimeType:         "application/pdf",
			FileSize:         1,
			GeminiURI:        "u",
			GeminiName:       "n",
			IsActive:         true,
		}))
	}

	page, err := svc.List(0, 2, true)
	require.NoError(t, err)
	assert.Len(t, page.Documents, 2)
	assert.Equal(t, int64(3), page.Total)
}
