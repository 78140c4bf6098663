package llm

import (
	"context"
	"errors"
	"testing"

	"omnix/models"
)

type stubClient struct {
	result string
	err    error
}

func (c *stubClient) Stream(context.Context, []Message) (Stream, error) {
	return nil, errors.New("not implemented")
}

func (c *stubClient) Invoke(context.Context, []Message) (string, error) {
	return c.result, c.err
}

func TestGenerateTitleReturnsTrimmedResult(t *testing.T) {
	client := &stubClient{result: "  Weather small talk \n"}
	title := GenerateTitle(context.Background(), client, "how is the weather", "sunny")
	if title != "Weather small talk" {
		t.Fatalf("expected trimmed title, got %q", title)
	}
}

func TestGenerateTitleFallsBackOnError(t *testing.T) {
	client := &stubClient{err: errors.New("upstream down")}
	title := GenerateTitle(context.Background(), client, "hi", "hello")
	if title != models.DefaultConversationTitle {
		t.Fatalf("expected default title on failure, got %q", title)
	}
}

func TestGenerateTitleFallsBackOnEmptyResult(t *testing.T) {
	client := &stubClient{result: "   "}
	title := GenerateTitle(context.Background(), client, "hi", "hello")
	if title != models.DefaultConversationTitle {
		t.Fatalf("expected default title on empty result, got %q", title)
	}
}
