package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"omnix/middleware"
	"omnix/pkg/cache"
	"omnix/pkg/config"
	"omnix/pkg/response"
	"omnix/pkg/store"
)

func listCacheKey(uid uint) string {
	return cache.KeyFromStrings("conversations", strconv.Itoa(int(uid)))
}

// ListConversations returns the user's conversations, newest first. The
// result is cached briefly; every write path invalidates the key.
func ListConversations(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		key := listCacheKey(uid)

		if v, ok := cache.Default().Get(key); ok {
			response.Success(c, gin.H{"conversations": v})
			return
		}

		convs, err := st.ListConversations(c.Request.Context(), uid)
		if err != nil {
			response.Internal(c, "db error")
			return
		}

		result := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			result = append(result, gin.H{
				"id":        conv.ID,
				"title":     conv.Title,
				"createdAt": conv.CreatedAt,
			})
		}
		cache.Default().Set(key, result, time.Duration(config.ListCacheTTLSeconds)*time.Second)

		response.Success(c, gin.H{"conversations": result})
	}
}

// GetConversation returns one conversation with its interleaved messages.
func GetConversation(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		id := c.Param("conversation_id")

		conv, err := st.GetConversation(c.Request.Context(), uid, id)
		if err != nil {
			response.NotFound(c, "conversation not found")
			return
		}

		messages, err := st.Timeline(c.Request.Context(), conv.ID)
		if err != nil {
			response.Internal(c, "failed to load messages")
			return
		}

		response.Success(c, gin.H{
			"id":        conv.ID,
			"title":     conv.Title,
			"createdAt": conv.CreatedAt,
			"messages":  messages,
		})
	}
}

// DeleteConversation removes a conversation and its messages.
func DeleteConversation(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		id := c.Param("conversation_id")

		if err := st.DeleteConversation(c.Request.Context(), uid, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				response.NotFound(c, "conversation not found")
				return
			}
			response.Internal(c, "failed to delete conversation")
			return
		}
		cache.Default().Delete(listCacheKey(uid))
		response.SuccessMessage(c, nil, "conversation deleted")
	}
}

// RenameConversation updates a conversation's title.
func RenameConversation(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body struct {
			ConversationID string `json:"conversationId" binding:"required,len=36"`
			Title          string `json:"title" binding:"required,max=100"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		if _, err := st.GetConversation(c.Request.Context(), uid, body.ConversationID); err != nil {
			response.NotFound(c, "conversation not found")
			return
		}
		if err := st.UpdateTitle(c.Request.Context(), body.ConversationID, body.Title); err != nil {
			response.Internal(c, "failed to update title")
			return
		}
		cache.Default().Delete(listCacheKey(uid))
		response.SuccessMessage(c, nil, "title updated")
	}
}
