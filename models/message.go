package models

import "time"

// UserMessage keeps the id supplied by the client so a turn is identified
// the same way on both sides. Immutable after creation.
type UserMessage struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"size:36;index;not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

// AssistantMessage is created with a server-generated id when streaming
// starts; its content is only written once, after the stream ends.
type AssistantMessage struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"size:36;index;not null"`
	UserMessageID  string `gorm:"size:36;not null"`
	Model          string `gorm:"size:50;not null"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}
