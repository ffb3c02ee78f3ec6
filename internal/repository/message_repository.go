package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"ragfilechat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message and touches the owning session's updated_at in the
// same transaction, so session listings stay ordered by recent activity.
func (r *MessageRepository) Create(message *model.Message) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("create message failed: %w", err)
		}
		if err := tx.Model(&model.ChatSession{}).
			Where("id = ?", message.SessionID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("touch session failed: %w", err)
		}
		return nil
	})
	return err
}

func (r *MessageRepository) ListBySessionID(sessionID uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) CountBySessionID(sessionID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&model.Message{}).Where("session_id = ?", sessionID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return total, nil
}
