package model

import "time"

// ChatSession groups an ordered list of messages. Title is nullable: sessions
// created implicitly by a chat turn get a truncated copy of the first query.
type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     *string   `gorm:"size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
