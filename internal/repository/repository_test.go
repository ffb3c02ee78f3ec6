package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ragfilechat/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.ChatSession{}, &model.Message{}, &model.Document{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestSessionCreateTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	untitled := &model.ChatSession{}
	require.NoError(t, repo.Create(untitled))
	assert.NotZero(t, untitled.ID)

	got, err := repo.GetByID(untitled.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Title)

	titled := &model.ChatSession{Title: strPtr("quarterly report")}
	require.NoError(t, repo.Create(titled))

	got, err = repo.GetByID(titled.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Title)
	assert.Equal(t, "quarterly report", *got.Title)
}

func TestSessionGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	got, err := repo.GetByID(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionListOrderedByRecentActivity(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := NewSessionRepository(db)
	messageRepo := NewMessageRepository(db)

	first := &model.ChatSession{Title: strPtr("first")}
	require.NoError(t, sessionRepo.Create(first))
	time.Sleep(5 * time.Millisecond)
	second := &model.ChatSession{Title: strPtr("second")}
	require.NoError(t, sessionRepo.Create(second))

	sessions, err := sessionRepo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)

	// Appending a message bumps the older session back to the top.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, messageRepo.Create(&model.Message{
		SessionID: first.ID,
		Role:      model.RoleUser,
		Content:   "hello",
	}))

	sessions, err = sessionRepo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
}

func TestMessageCreateTouchesSession(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := NewSessionRepository(db)
	messageRepo := NewMessageRepository(db)

	session := &model.ChatSession{}
	require.NoError(t, sessionRepo.Create(session))
	before := session.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, messageRepo.Create(&model.Message{
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   "hello",
	}))

	after, err := sessionRepo.GetByID(session.ID)
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before))
	assert.True(t, after.UpdatedAt.After(before))
}

func TestMessagesAscendingWithCount(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := NewSessionRepository(db)
	messageRepo := NewMessageRepository(db)

	session := &model.ChatSession{}
	require.NoError(t, sessionRepo.Create(session))

	contents := []string{"one", "two", "three"}
	for _, content := range contents {
		require.NoError(t, messageRepo.Create(&model.Message{
			SessionID: session.ID,
			Role:      model.RoleUser,
			Content:   content,
		}))
		time.Sleep(2 * time.Millisecond)
	}

	messages, err := messageRepo.ListBySessionID(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, content := range contents {
		assert.Equal(t, content, messages[i].Content)
	}
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}

	total, err := messageRepo.CountBySessionID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestSessionDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := NewSessionRepository(db)
	messageRepo := NewMessageRepository(db)

	session := &model.ChatSession{}
	require.NoError(t, sessionRepo.Create(session))
	for i := 0; i < 2; i++ {
		require.NoError(t, messageRepo.Create(&model.Message{
			SessionID: session.ID,
			Role:      model.RoleUser,
			Content:   "msg",
		}))
	}

	deleted, err := sessionRepo.Delete(session.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var orphanCount int64
	require.NoError(t, db.Model(&model.Message{}).Where("session_id = ?", session.ID).Count(&orphanCount).Error)
	assert.Zero(t, orphanCount)

	deleted, err = sessionRepo.Delete(session.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func seedDocuments(t *testing.T, repo *DocumentRepository, n int) []*model.Document {
	t.Helper()
	docs := make([]*model.Document, 0, n)
	for i := 0; i < n; i++ {
		doc := &model.Document{
			Filename:         fmt.Sprintf("doc-%d.pdf", i),
			OriginalFilename: fmt.Sprintf("doc-%d.pdf", i),
			MimeType:         "application/pdf",
			FileSize:         100,
			GeminiURI:        fmt.Sprintf("https://files.example/%d", i),
			GeminiName:       fmt.Sprintf("files/doc-%d", i),
			IsActive:         true,
		}
		require.NoError(t, repo.Create(doc))
		docs = append(docs, doc)
		time.Sleep(2 * time.Millisecond)
	}
	return docs
}

func TestDocumentPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	seedDocuments(t, repo, 5)

	page, total, err := repo.List(0, 3, true)
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.Equal(t, int64(5), total)

	rest, total, err := repo.List(3, 3, true)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Equal(t, int64(5), total)
}

func TestDocumentListOrderedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	docs := seedDocuments(t, repo, 3)

	page, _, err := repo.List(0, 10, true)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, docs[2].ID, page[0].ID)
	assert.Equal(t, docs[0].ID, page[2].ID)
}

func TestDocumentSoftDeleteFiltering(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	docs := seedDocuments(t, repo, 2)

	ok, err := repo.SoftDelete(docs[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	active, total, err := repo.List(0, 10, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, docs[1].ID, active[0].ID)

	all, total, err := repo.List(0, 10, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), total)

	got, err := repo.GetByID(docs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)
}

func TestDocumentSoftDeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	seedDocuments(t, repo, 1)

	ok, err := repo.SoftDelete(999)
	require.NoError(t, err)
	assert.False(t, ok)

	// No existing row was affected.
	_, total, err := repo.List(0, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
