package generativeAI

import (
	"context"
	"fmt"

	"github.com/Blurjp/pathavana/internal/types"
)

var _ AssistantClient = (*DisabledClient)(nil)

// DisabledClient stands in when no Gemini credentials are configured. Every
// call fails, which routes chat replies through the template fallback.
type DisabledClient struct {
	reason string
}

func NewDisabledClient(reason string) *DisabledClient {
	return &DisabledClient{reason: reason}
}

func (d *DisabledClient) GenerateTripReply(ctx context.Context, history []types.ChatTurn, guidance types.Guidance) (string, error) {
	return "", fmt.Errorf("assistant LLM disabled: %s", d.reason)
}
