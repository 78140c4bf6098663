package store

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"omnix/models"
)

func newTestStore(t *testing.T) ConversationStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.UserMessage{}, &models.AssistantMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func TestCreateConversationAssignsIDAndDefaultTitle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	conv, err := st.CreateConversation(ctx, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(conv.ID) != 36 {
		t.Fatalf("expected 36-char uuid, got %q", conv.ID)
	}
	if conv.Title != models.DefaultConversationTitle {
		t.Fatalf("expected default title, got %q", conv.Title)
	}

	got, err := st.GetConversation(ctx, 1, conv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != conv.ID || got.UserID != 1 {
		t.Fatalf("unexpected conversation: %+v", got)
	}

	// other users cannot see it
	if _, err := st.GetConversation(ctx, 2, conv.ID); err == nil {
		t.Fatalf("expected lookup by wrong user to fail")
	}
}

func TestUpdateTitle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	conv, _ := st.CreateConversation(ctx, 1)
	if err := st.UpdateTitle(ctx, conv.ID, "Weather talk"); err != nil {
		t.Fatalf("update title: %v", err)
	}
	got, _ := st.GetConversation(ctx, 1, conv.ID)
	if got.Title != "Weather talk" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
}

func TestAddExchangeAndTimelineInterleaving(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	conv, _ := st.CreateConversation(ctx, 1)

	base := time.Now().Add(-time.Minute)
	addTurn := func(n int, userText, aiText string) {
		t.Helper()
		userID := "00000000-0000-0000-0000-00000000000" + string(rune('0'+n))
		err := st.AddExchange(ctx,
			models.UserMessage{
				ID:             userID,
				ConversationID: conv.ID,
				Content:        userText,
				CreatedAt:      base.Add(time.Duration(n) * time.Second),
			},
			models.AssistantMessage{
				ID:             "a" + userID[1:],
				ConversationID: conv.ID,
				UserMessageID:  userID,
				Model:          "m",
				Content:        aiText,
				CreatedAt:      base.Add(time.Duration(n)*time.Second + 500*time.Millisecond),
			})
		if err != nil {
			t.Fatalf("add exchange %d: %v", n, err)
		}
	}

	addTurn(1, "hi", "hello")
	addTurn(2, "how are you", "fine")

	entries, err := st.Timeline(ctx, conv.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantRoles := []string{"user", "assistant", "user", "assistant"}
	wantContent := []string{"hi", "hello", "how are you", "fine"}
	for i := range entries {
		if entries[i].Role != wantRoles[i] || entries[i].Content != wantContent[i] {
			t.Fatalf("entry %d: got %s %q", i, entries[i].Role, entries[i].Content)
		}
	}
	if entries[1].Model != "m" {
		t.Fatalf("expected assistant entries to carry the model name")
	}
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	conv, _ := st.CreateConversation(ctx, 1)

	err := st.AddExchange(ctx,
		models.UserMessage{ID: "11111111-1111-1111-1111-111111111111", ConversationID: conv.ID, Content: "hi"},
		models.AssistantMessage{ID: "22222222-2222-2222-2222-222222222222", ConversationID: conv.ID, UserMessageID: "11111111-1111-1111-1111-111111111111", Model: "m", Content: "hello"},
	)
	if err != nil {
		t.Fatalf("add exchange: %v", err)
	}

	// wrong owner cannot delete
	if err := st.DeleteConversation(ctx, 2, conv.ID); err == nil {
		t.Fatalf("expected delete by wrong user to fail")
	}

	if err := st.DeleteConversation(ctx, 1, conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetConversation(ctx, 1, conv.ID); err == nil {
		t.Fatalf("expected conversation gone")
	}
	entries, err := st.Timeline(ctx, conv.ID)
	if err != nil {
		t.Fatalf("timeline after delete: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected messages removed with the conversation, got %d", len(entries))
	}
}

func TestListConversationsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, _ := st.CreateConversation(ctx, 1)
	time.Sleep(5 * time.Millisecond)
	second, _ := st.CreateConversation(ctx, 1)
	if _, err := st.CreateConversation(ctx, 2); err != nil {
		t.Fatalf("create for other user: %v", err)
	}

	convs, err := st.ListConversations(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations for user 1, got %d", len(convs))
	}
	if convs[0].ID != second.ID || convs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v then %v", convs[0].ID, convs[1].ID)
	}
}
