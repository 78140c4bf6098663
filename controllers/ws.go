package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"omnix/middleware"
	"omnix/pkg/cache"
	"omnix/pkg/chat"
	"omnix/pkg/response"
	"omnix/pkg/sse"
	"omnix/pkg/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

type wsStartPayload struct {
	Type string `json:"type" binding:"required,eq=start"`
	chatRequest
}

type wsEvent struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event"`
	Data  string `json:"data"`
}

// wsSink delivers pipeline events over a websocket connection in the
// same order the SSE multiplexer would.
type wsSink struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	closed  bool
	onClose []func()
}

func (s *wsSink) Open() {}

func (s *wsSink) Push(ev sse.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sse.ErrClosed
	}
	return s.conn.WriteJSON(wsEvent{ID: ev.ID, Event: ev.Type.String(), Data: ev.Data})
}

func (s *wsSink) OnClose(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

func (s *wsSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	callbacks := s.onClose
	s.onClose = nil
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// ChatWS runs the streaming pipeline over a websocket.
// Client protocol (JSON messages):
//
//	-> {type: "start", ...same body as POST /api/chat}
//	<- {event: "message", id: <assistant id>, data: <fragment>}
//	<- {event: "title_generation" | "conversation_detail_metadata" | "end", data: ...}
func ChatWS(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	pipeline := chat.NewPipeline(st, nil)
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT; the browser websocket API cannot
		// set an Authorization header.
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			response.Unauthorized(c, "missing token query")
			return
		}
		uid, _, err := middleware.ParseToken(tokenStr)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var payload wsStartPayload
		if err := readStartPayload(conn, &payload); err != nil {
			writeWSError(conn, err.Error())
			return
		}

		uidStr := strconv.Itoa(int(uid))
		if content, ok := payload.lastUserContent(); ok && !middleware.DuplicateGuard(uidStr, content) {
			writeWSError(conn, "duplicate message")
			return
		}
		release := middleware.AcquireUserSlot(uidStr)
		defer release()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		sink := &wsSink{conn: conn}

		// read pump: the only reads after start are client close frames
		go func() {
			_ = conn.SetReadDeadline(time.Time{})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					sink.Close()
					cancel()
					return
				}
			}
		}()

		err = pipeline.Run(ctx, payload.toPipelineRequest(uid), sink)
		switch {
		case errors.Is(err, chat.ErrNoUserTurn):
			writeWSError(conn, "messages must contain a user message")
		case err != nil:
			log.Printf("[ws] pipeline setup failed: %v", err)
			writeWSError(conn, "failed to create conversation")
		default:
			cache.Default().Delete(listCacheKey(uid))
		}
		sink.Close()
	}
}

func readStartPayload(conn *websocket.Conn, payload *wsStartPayload) error {
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return errors.New("failed to read start message")
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return errors.New("invalid start message")
	}
	// same validation rules as the HTTP endpoint
	if err := binding.Validator.ValidateStruct(payload); err != nil {
		return err
	}
	return nil
}

func writeWSError(conn *websocket.Conn, msg string) {
	data, _ := json.Marshal(map[string]string{"error": msg})
	_ = conn.WriteJSON(wsEvent{Event: sse.TypeError.String(), Data: string(data)})
}
