package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Config carries the per-request invocation settings. Nothing here is
// persisted; the caller supplies endpoint and credential on every call.
type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	Temperature      float32
	MaxTokens        int
	SystemPrompt     string
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

type Message struct {
	ID      string
	Role    string
	Content string
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client interface {
	// Stream starts a streaming completion. The returned stream yields
	// content fragments in order; concatenating them reconstructs the
	// full response. It is finite and cannot be restarted.
	Stream(ctx context.Context, msgs []Message) (Stream, error)
	// Invoke runs a one-shot completion and returns the full text.
	Invoke(ctx context.Context, msgs []Message) (string, error)
}

type Stream interface {
	// Recv returns the next fragment, or io.EOF when the stream is
	// exhausted. Any other error is terminal; fragments already yielded
	// are not retried.
	Recv() (string, error)
	Close() error
}

type openAIClient struct {
	cfg Config
	api *openai.Client
}

// NewClient builds a Client against cfg.BaseURL with cfg.APIKey.
func NewClient(cfg Config) Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &openAIClient{cfg: cfg, api: openai.NewClientWithConfig(apiCfg)}
}

func (c *openAIClient) request(msgs []Message, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if strings.TrimSpace(c.cfg.SystemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.cfg.SystemPrompt,
		})
	}
	for _, m := range msgs {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:            c.cfg.Model,
		Messages:         messages,
		Temperature:      c.cfg.Temperature,
		MaxTokens:        c.cfg.MaxTokens,
		TopP:             c.cfg.TopP,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		PresencePenalty:  c.cfg.PresencePenalty,
		Stream:           stream,
	}
}

func (c *openAIClient) Stream(ctx context.Context, msgs []Message) (Stream, error) {
	s, err := c.api.CreateChatCompletionStream(ctx, c.request(msgs, true))
	if err != nil {
		return nil, err
	}
	return &openAIStream{inner: s}, nil
}

func (c *openAIClient) Invoke(ctx context.Context, msgs []Message) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.request(msgs, false))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type openAIStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			// io.EOF passes through as the normal end-of-stream marker
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *openAIStream) Close() error {
	return s.inner.Close()
}
