package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragfilechat/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(document *model.Document) error {
	if err := r.db.Create(document).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// GetByID returns nil without error when the document does not exist.
func (r *DocumentRepository) GetByID(documentID uint) (*model.Document, error) {
	var document model.Document
	if err := r.db.First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &document, nil
}

// List returns one page of documents plus the total count matching the filter.
func (r *DocumentRepository) List(skip, limit int, activeOnly bool) ([]model.Document, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := r.db.Model(&model.Document{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents failed: %w", err)
	}

	var documents []model.Document
	if err := query.Order("uploaded_at DESC, id DESC").Offset(skip).Limit(limit).Find(&documents).Error; err != nil {
		return nil, 0, fmt.Errorf("list documents failed: %w", err)
	}
	return documents, total, nil
}

// SoftDelete marks a document inactive. Returns false when no row matched.
func (r *DocumentRepository) SoftDelete(documentID uint) (bool, error) {
	res := r.db.Model(&model.Document{}).
		Where("id = ?", documentID).
		Update("is_active", false)
	if res.Error != nil {
		return false, fmt.Errorf("soft delete document failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
