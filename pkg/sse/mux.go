package sse

import (
	"errors"
	"net/http"
	"sync"

	ginsse "github.com/gin-contrib/sse"
)

var (
	ErrStreamingUnsupported = errors.New("sse: response writer does not support streaming")
	ErrNotOpened            = errors.New("sse: push before open")
	ErrClosed               = errors.New("sse: stream closed")
)

// Mux serializes events onto a single long-lived SSE response. Pushes are
// delivered strictly in call order; Close is idempotent and runs the
// registered close callbacks exactly once.
type Mux struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	opened  bool
	closed  bool
	onClose []func()
}

func NewMux(w http.ResponseWriter) (*Mux, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &Mux{w: w, flusher: flusher}, nil
}

// Open sends the response headers so the caller starts receiving bytes
// before the first event. Calling it again is a no-op.
func (m *Mux) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened || m.closed {
		return
	}
	m.opened = true
	h := m.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx buffering off
	m.w.WriteHeader(http.StatusOK)
	m.flusher.Flush()
}

// Push writes one event and flushes it. Events are never reordered,
// coalesced, or dropped: the mutex is held for the whole write.
func (m *Mux) Push(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.opened {
		return ErrNotOpened
	}
	if err := ginsse.Encode(m.w, ginsse.Event{
		Id:    ev.ID,
		Event: ev.Type.String(),
		Data:  ev.Data,
	}); err != nil {
		return err
	}
	m.flusher.Flush()
	return nil
}

// OnClose registers a callback invoked when the stream closes, whichever
// side closes it first.
func (m *Mux) OnClose(fn func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		fn()
		return
	}
	m.onClose = append(m.onClose, fn)
	m.mu.Unlock()
}

// Close releases the stream. Safe to call multiple times.
func (m *Mux) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	callbacks := m.onClose
	m.onClose = nil
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
