package generativeAI

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/Blurjp/pathavana/internal/types"
)

const defaultModel = "gemini-2.0-flash"

// AssistantClient is the slice of the Gemini client the session service
// depends on; tests substitute a mock.
type AssistantClient interface {
	GenerateTripReply(ctx context.Context, history []types.ChatTurn, guidance types.Guidance) (string, error)
}

var _ AssistantClient = (*AIClient)(nil)

type AIClient struct {
	client *genai.Client
	model  string
}

// NewAIClient builds a Gemini-backed assistant client. The model name comes
// from config; empty falls back to the default.
func NewAIClient(ctx context.Context, model string) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
	}, nil
}

const systemPrompt = `You are Pathavana, a travel-planning assistant. Use the planning
context to answer the traveler's latest message. Keep replies concise and concrete,
grounded in the conversation; suggest the next planning step when natural.`

// GenerateTripReply produces the assistant message for the latest user turn.
// The hint pipeline's guidance is passed as planning context so the reply and
// the hints stay consistent.
func (ai *AIClient) GenerateTripReply(ctx context.Context, history []types.ChatTurn, guidance types.Guidance) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.5),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	chat, err := ai.client.Chats.Create(ctx, ai.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	prompt := buildPrompt(history, guidance)
	result, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to generate trip reply: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return text, nil
}

func buildPrompt(history []types.ChatTurn, guidance types.Guidance) string {
	var b strings.Builder

	b.WriteString("Planning context:\n")
	fmt.Fprintf(&b, "- conversation state: %s\n", guidance.ConversationState)
	for _, ent := range guidance.ExtractedEntities {
		fmt.Fprintf(&b, "- %s: %s\n", ent.Type, ent.Value)
	}

	b.WriteString("\nConversation:\n")
	for _, turn := range tail(history, 20) {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return b.String()
}

// tail keeps the prompt bounded on long sessions.
func tail(turns []types.ChatTurn, limit int) []types.ChatTurn {
	if len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}
