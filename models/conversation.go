package models

import "time"

// DefaultConversationTitle is the placeholder set at creation and the
// fallback when title generation fails.
const DefaultConversationTitle = "New Conversation"

type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"not null;index"`
	Title     string    `gorm:"size:255;not null"`
	CreatedAt time.Time

	UserMessages      []UserMessage      `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	AssistantMessages []AssistantMessage `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}
