package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"omnix/models"
)

const titleInstruction = "You are a conversation title generator. Based on the exchange below, " +
	"produce one short, clear, descriptive title (at most eight words) so the conversation " +
	"is easy to recognize later. Match the language of the conversation. Respond with the title only."

// GenerateTitle derives a short label from the first exchange. Title
// generation is best-effort: any client failure or empty result falls
// back to the default placeholder instead of propagating an error.
func GenerateTitle(ctx context.Context, client Client, userText, assistantText string) string {
	prompt := fmt.Sprintf("User: %s\n\nAI: %s", userText, assistantText)
	title, err := client.Invoke(ctx, []Message{
		{Role: "system", Content: titleInstruction},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		log.Printf("[title] generation failed, using default: %v", err)
		return models.DefaultConversationTitle
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.DefaultConversationTitle
	}
	return title
}
