package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"omnix/middleware"
	"omnix/pkg/response"
)

func chatTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/chat", func(c *gin.Context) {
		// stand-in for the auth middleware
		c.Set(middleware.ContextUserIDKey, uint(1))
	}, ChatStream(nil))
	return r
}

func validChatBody() map[string]any {
	return map[string]any{
		"baseURL":          "https://api.example.com/v1",
		"apiKey":           "sk-test",
		"model":            "gpt-4o-mini",
		"temperature":      0.7,
		"maxTokens":        1024,
		"systemPrompt":     "",
		"topP":             1.0,
		"frequencyPenalty": 0.0,
		"presencePenalty":  0.0,
		"messages": []map[string]any{
			{"id": "123e4567-e89b-12d3-a456-426614174000", "role": "user", "content": "hi"},
		},
	}
}

func postChat(t *testing.T, r *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatStreamRejectsOutOfRangeMaxTokens(t *testing.T) {
	r := chatTestRouter()
	body := validChatBody()
	body["maxTokens"] = 9000

	w := postChat(t, r, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "text/event-stream" {
		t.Fatalf("no stream may be opened on validation failure")
	}
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("expected envelope response: %v", err)
	}
	if env.Success {
		t.Fatalf("expected success=false")
	}
}

func TestChatStreamRejectsBadMessageShape(t *testing.T) {
	r := chatTestRouter()

	body := validChatBody()
	body["messages"] = []map[string]any{
		{"id": "short-id", "role": "user", "content": "hi"},
	}
	if w := postChat(t, r, body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-36-char id, got %d", w.Code)
	}

	body = validChatBody()
	body["messages"] = []map[string]any{
		{"id": "123e4567-e89b-12d3-a456-426614174000", "role": "system", "content": "hi"},
	}
	if w := postChat(t, r, body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", w.Code)
	}
}

func TestChatStreamRejectsOutOfRangePenalties(t *testing.T) {
	r := chatTestRouter()
	body := validChatBody()
	body["frequencyPenalty"] = 2.5

	if w := postChat(t, r, body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range penalty, got %d", w.Code)
	}
}
