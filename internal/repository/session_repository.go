package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragfilechat/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// GetByID returns nil without error when the session does not exist.
func (r *SessionRepository) GetByID(sessionID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) List(skip, limit int) ([]model.ChatSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	var sessions []model.ChatSession
	if err := r.db.Order("updated_at DESC").Offset(skip).Limit(limit).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// Delete removes a session and all its messages in one transaction. The
// cascade is explicit so no orphaned messages can survive the parent row.
func (r *SessionRepository) Delete(sessionID uint) (bool, error) {
	deleted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error; err != nil {
			return fmt.Errorf("delete session messages failed: %w", err)
		}
		res := tx.Delete(&model.ChatSession{}, sessionID)
		if res.Error != nil {
			return fmt.Errorf("delete session failed: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
