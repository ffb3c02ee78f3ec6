package model

import "time"

// Document records a file relayed to the Gemini File API. Rows are never
// hard-deleted locally; IsActive=false marks a soft-deleted document.
type Document struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Filename         string    `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	MimeType         string    `gorm:"size:100;not null" json:"mime_type"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	GeminiURI        string    `gorm:"size:500;not null" json:"gemini_uri"`
	GeminiName       string    `gorm:"size:500;not null" json:"gemini_name"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
}
