package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"omnix/models"
)

// TimelineEntry is one message in a conversation's interleaved history.
type TimelineEntry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationStore is the durable record of conversations and their
// messages. Handlers and the pipeline receive it explicitly so tests can
// substitute an in-memory double.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID uint) (*models.Conversation, error)
	GetConversation(ctx context.Context, userID uint, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteConversation(ctx context.Context, userID uint, id string) error
	// AddExchange inserts one user/assistant message pair in a single
	// transaction. Called exactly once per pipeline run.
	AddExchange(ctx context.Context, user models.UserMessage, assistant models.AssistantMessage) error
	Timeline(ctx context.Context, conversationID string) ([]TimelineEntry, error)
}

type gormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) ConversationStore {
	return &gormStore{db: db}
}

func (s *gormStore) CreateConversation(ctx context.Context, userID uint) (*models.Conversation, error) {
	conv := models.Conversation{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  models.DefaultConversationTitle,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *gormStore) GetConversation(ctx context.Context, userID uint, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *gormStore) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&convs).Error
	return convs, err
}

func (s *gormStore) UpdateTitle(ctx context.Context, id, title string) error {
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// DeleteConversation removes the conversation and its messages in one
// transaction rather than relying on FK cascades, so it behaves the same
// on backends where cascades are off by default.
func (s *gormStore) DeleteConversation(ctx context.Context, userID uint, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.AssistantMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.UserMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
}

func (s *gormStore) AddExchange(ctx context.Context, user models.UserMessage, assistant models.AssistantMessage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&assistant).Error
	})
}

// Timeline interleaves user and assistant messages by pairing them in
// creation order, one assistant reply after each user turn.
func (s *gormStore) Timeline(ctx context.Context, conversationID string) ([]TimelineEntry, error) {
	var userMsgs []models.UserMessage
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at").
		Find(&userMsgs).Error; err != nil {
		return nil, err
	}
	var aiMsgs []models.AssistantMessage
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at").
		Find(&aiMsgs).Error; err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(userMsgs)+len(aiMsgs))
	for i, um := range userMsgs {
		entries = append(entries, TimelineEntry{
			ID:        um.ID,
			Role:      "user",
			Content:   um.Content,
			CreatedAt: um.CreatedAt,
		})
		if i < len(aiMsgs) {
			am := aiMsgs[i]
			entries = append(entries, TimelineEntry{
				ID:        am.ID,
				Role:      "assistant",
				Content:   am.Content,
				Model:     am.Model,
				CreatedAt: am.CreatedAt,
			})
		}
	}
	return entries, nil
}
