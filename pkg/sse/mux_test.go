package sse

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenSetsStreamingHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	m, err := NewMux(w)
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}

	m.Open()
	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", got)
	}
	if w.Code != 200 {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// second open is a no-op
	m.Open()
}

func TestPushBeforeOpenFails(t *testing.T) {
	w := httptest.NewRecorder()
	m, _ := NewMux(w)
	if err := m.Push(Event{Type: TypeMessage, Data: "x"}); err != ErrNotOpened {
		t.Fatalf("expected ErrNotOpened, got %v", err)
	}
}

func TestPushPreservesOrder(t *testing.T) {
	w := httptest.NewRecorder()
	m, _ := NewMux(w)
	m.Open()

	events := []Event{
		{ID: "a1", Type: TypeMessage, Data: `"Hel"`},
		{ID: "a1", Type: TypeMessage, Data: `"lo!"`},
		{Type: TypeTitleGeneration, Data: `{"title":"Greeting"}`},
		{Type: TypeConversationMetadata, Data: `{"conversationId":"c1"}`},
		{Type: TypeEnd, Data: ""},
	}
	for _, ev := range events {
		if err := m.Push(ev); err != nil {
			t.Fatalf("push %s: %v", ev.Type, err)
		}
	}

	body := w.Body.String()
	markers := []string{`"Hel"`, `"lo!"`, "title_generation", "conversation_detail_metadata", "end"}
	last := -1
	for _, mark := range markers {
		idx := strings.Index(body, mark)
		if idx < 0 {
			t.Fatalf("expected %q on the wire, body=%q", mark, body)
		}
		if idx < last {
			t.Fatalf("marker %q out of order, body=%q", mark, body)
		}
		last = idx
	}
	if !strings.Contains(body, "a1") {
		t.Fatalf("expected correlation id on message events, body=%q", body)
	}
}

func TestCloseIsIdempotentAndRunsCallbacksOnce(t *testing.T) {
	w := httptest.NewRecorder()
	m, _ := NewMux(w)
	m.Open()

	calls := 0
	m.OnClose(func() { calls++ })

	m.Close()
	m.Close()
	if calls != 1 {
		t.Fatalf("expected close callback to run once, ran %d times", calls)
	}

	if err := m.Push(Event{Type: TypeEnd}); err != ErrClosed {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}

	// registering after close fires immediately
	m.OnClose(func() { calls++ })
	if calls != 2 {
		t.Fatalf("expected late callback to fire immediately, calls=%d", calls)
	}
}

// plainWriter implements http.ResponseWriter without http.Flusher.
type plainWriter struct{}

func (plainWriter) Header() http.Header         { return http.Header{} }
func (plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (plainWriter) WriteHeader(int)             {}

func TestNewMuxRequiresFlusher(t *testing.T) {
	if _, err := NewMux(plainWriter{}); err != ErrStreamingUnsupported {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}
