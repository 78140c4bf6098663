package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/middleware"
	"omnix/pkg/cache"
	"omnix/pkg/chat"
	"omnix/pkg/llm"
	"omnix/pkg/response"
	"omnix/pkg/sse"
	"omnix/pkg/store"
)

type chatMessagePayload struct {
	ID      string `json:"id" binding:"required,len=36"`
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type chatRequest struct {
	BaseURL          string               `json:"baseURL" binding:"required"`
	APIKey           string               `json:"apiKey" binding:"required"`
	Model            string               `json:"model" binding:"required"`
	Temperature      float32              `json:"temperature"`
	MaxTokens        int                  `json:"maxTokens" binding:"required,min=1,max=8192"`
	SystemPrompt     string               `json:"systemPrompt"`
	TopP             float32              `json:"topP" binding:"min=0,max=2"`
	FrequencyPenalty float32              `json:"frequencyPenalty" binding:"min=0,max=2"`
	PresencePenalty  float32              `json:"presencePenalty" binding:"min=0,max=2"`
	Messages         []chatMessagePayload `json:"messages" binding:"required,min=1,dive"`
	ConversationID   string               `json:"conversationId"`
}

func (r *chatRequest) toPipelineRequest(uid uint) chat.Request {
	msgs := make([]llm.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msgs = append(msgs, llm.Message{ID: m.ID, Role: m.Role, Content: m.Content})
	}
	return chat.Request{
		UserID:         uid,
		ConversationID: r.ConversationID,
		Messages:       msgs,
		Config: llm.Config{
			BaseURL:          r.BaseURL,
			APIKey:           r.APIKey,
			Model:            r.Model,
			Temperature:      r.Temperature,
			MaxTokens:        r.MaxTokens,
			SystemPrompt:     r.SystemPrompt,
			TopP:             r.TopP,
			FrequencyPenalty: r.FrequencyPenalty,
			PresencePenalty:  r.PresencePenalty,
		},
	}
}

func (r *chatRequest) lastUserContent() (string, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content, true
		}
	}
	return "", false
}

// ChatStream answers one user turn over SSE. Event order on the wire:
// message* (title_generation)? conversation_detail_metadata end.
func ChatStream(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	pipeline := chat.NewPipeline(st, nil)
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body chatRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		uidStr := strconv.Itoa(int(uid))
		if content, ok := body.lastUserContent(); ok && !middleware.DuplicateGuard(uidStr, content) {
			response.Error(c, http.StatusTooManyRequests, "duplicate message", "Too Many Requests")
			return
		}
		release := middleware.AcquireUserSlot(uidStr)
		defer release()

		mux, err := sse.NewMux(c.Writer)
		if err != nil {
			response.Internal(c, "streaming unsupported")
			return
		}

		err = pipeline.Run(c.Request.Context(), body.toPipelineRequest(uid), mux)
		switch {
		case errors.Is(err, chat.ErrNoUserTurn):
			response.BadRequest(c, "messages must contain a user message")
		case err != nil:
			log.Printf("[chat] pipeline setup failed: %v", err)
			response.Internal(c, "failed to create conversation")
		default:
			cache.Default().Delete(listCacheKey(uid))
		}
	}
}
