package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"omnix/models"
	"omnix/pkg/llm"
	"omnix/pkg/sse"
	"omnix/pkg/store"
)

// ErrNoUserTurn is returned when the supplied history has no user-role
// message to answer. It always fires before the stream is opened.
var ErrNoUserTurn = errors.New("chat: history contains no user message")

// EventSink is the outbound channel the pipeline writes to. *sse.Mux is
// the HTTP implementation; the websocket handler provides another.
type EventSink interface {
	Open()
	Push(ev sse.Event) error
	OnClose(fn func())
	Close()
}

// Request is one streaming chat invocation.
type Request struct {
	UserID         uint
	ConversationID string
	Config         llm.Config
	Messages       []llm.Message
}

// Pipeline drives one request end to end: resolve the conversation,
// stream the model response through the sink, generate a title on the
// first interaction, and persist the exchange once the stream is done.
type Pipeline struct {
	store     store.ConversationStore
	newClient func(llm.Config) llm.Client
}

func NewPipeline(st store.ConversationStore, newClient func(llm.Config) llm.Client) *Pipeline {
	if newClient == nil {
		newClient = llm.NewClient
	}
	return &Pipeline{store: st, newClient: newClient}
}

// Run executes the pipeline. Any returned error occurred before the sink
// was opened (no bytes sent), so the caller can still write an HTTP
// error response: ErrNoUserTurn for a client error, anything else for a
// storage failure. Errors after the stream opens are handled on the
// stream itself or logged; they are never returned.
func (p *Pipeline) Run(ctx context.Context, req Request, sink EventSink) error {
	convID := req.ConversationID
	if convID == "" {
		conv, err := p.store.CreateConversation(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		convID = conv.ID
	}

	lastUser := lastUserMessage(req.Messages)
	if lastUser == nil {
		return ErrNoUserTurn
	}

	// Open before calling the model so the caller gets headers while the
	// upstream is still thinking.
	sink.Open()
	defer sink.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sink.OnClose(cancel)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			sink.Close()
		case <-done:
		}
	}()

	client := p.newClient(req.Config)
	assistantID := uuid.NewString()

	content, delivered := p.streamModel(streamCtx, client, req.Messages, assistantID, sink)

	if delivered && isFirstInteraction(req.Messages) {
		title := llm.GenerateTitle(streamCtx, client, lastUser.Content, content)
		if err := p.store.UpdateTitle(context.WithoutCancel(ctx), convID, title); err != nil {
			log.Printf("[chat] failed to update title conversation=%s: %v", convID, err)
		}
		data, _ := json.Marshal(map[string]string{"title": title})
		delivered = p.push(sink, sse.Event{Type: sse.TypeTitleGeneration, Data: string(data)})
	}

	if delivered {
		data, _ := json.Marshal(map[string]string{"conversationId": convID})
		delivered = p.push(sink, sse.Event{Type: sse.TypeConversationMetadata, Data: string(data)})
	}
	if delivered {
		p.push(sink, sse.Event{Type: sse.TypeEnd, Data: ""})
	}
	sink.Close()

	// Persist after the terminal event; a failure here can no longer be
	// reported on the closed stream. WithoutCancel keeps partial work
	// from being dropped when the caller disconnected mid-stream.
	persistCtx := context.WithoutCancel(ctx)
	err := p.store.AddExchange(persistCtx,
		models.UserMessage{
			ID:             lastUser.ID,
			ConversationID: convID,
			Content:        lastUser.Content,
		},
		models.AssistantMessage{
			ID:             assistantID,
			ConversationID: convID,
			UserMessageID:  lastUser.ID,
			Model:          req.Config.Model,
			Content:        content,
		})
	if err != nil {
		log.Printf("[chat] failed to persist exchange conversation=%s user_message=%s: %v", convID, lastUser.ID, err)
	}
	return nil
}

// streamModel forwards model fragments as message events, strictly in
// the order received. It returns the accumulated content and whether the
// caller is still connected. An upstream failure is reported as an error
// event; fragments already delivered stay delivered.
func (p *Pipeline) streamModel(ctx context.Context, client llm.Client, msgs []llm.Message, assistantID string, sink EventSink) (string, bool) {
	var content []byte

	stream, err := client.Stream(ctx, msgs)
	if err != nil {
		if ctx.Err() != nil {
			return string(content), false
		}
		log.Printf("[chat] upstream stream failed to start: %v", err)
		return string(content), p.pushError(sink, err)
	}
	defer stream.Close()

	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return string(content), true
		}
		if err != nil {
			if ctx.Err() != nil {
				// caller went away; keep what we have for persistence
				return string(content), false
			}
			log.Printf("[chat] upstream stream failed mid-flight: %v", err)
			return string(content), p.pushError(sink, err)
		}
		content = append(content, frag...)
		data, _ := json.Marshal(frag)
		if !p.push(sink, sse.Event{ID: assistantID, Type: sse.TypeMessage, Data: string(data)}) {
			return string(content), false
		}
	}
}

func (p *Pipeline) push(sink EventSink, ev sse.Event) bool {
	if err := sink.Push(ev); err != nil {
		if !errors.Is(err, sse.ErrClosed) {
			log.Printf("[chat] push %s event failed: %v", ev.Type, err)
		}
		return false
	}
	return true
}

func (p *Pipeline) pushError(sink EventSink, cause error) bool {
	data, _ := json.Marshal(map[string]string{"error": cause.Error()})
	return p.push(sink, sse.Event{Type: sse.TypeError, Data: string(data)})
}

func lastUserMessage(msgs []llm.Message) *llm.Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return &msgs[i]
		}
	}
	return nil
}

// isFirstInteraction reports whether the history holds exactly one
// user-role message, which gates title generation.
func isFirstInteraction(msgs []llm.Message) bool {
	n := 0
	for _, m := range msgs {
		if m.Role == "user" {
			n++
		}
	}
	return n == 1
}
