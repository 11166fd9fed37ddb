package hints

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Blurjp/pathavana/internal/types"
)

func newTestPipeline(month time.Month) *Pipeline {
	kb := NewDestinationKB()
	logger := slog.Default()
	return NewPipeline(
		NewEntityExtractor(kb, logger),
		NewStateTracker(),
		NewGenerator(kb, logger, 5, fixedClock(month)),
		logger,
	)
}

func userTurn(content string) types.ChatTurn {
	return types.ChatTurn{Role: types.RoleUser, Content: content, Timestamp: time.Unix(0, 0)}
}

func TestAdvance_FirstMessage(t *testing.T) {
	pipeline := newTestPipeline(time.June)

	history := []types.ChatTurn{userTurn("I want to plan a romantic trip to Paris in June")}
	guidance := pipeline.Advance(context.Background(), history, types.StateInitial, 1)

	dest, ok := FindByType(guidance.ExtractedEntities, types.EntityDestination)
	assert.True(t, ok)
	assert.Equal(t, "Paris", dest.Value)

	date, ok := FindByType(guidance.ExtractedEntities, types.EntityDate)
	assert.True(t, ok)
	assert.Equal(t, "june", date.Value)

	// Destination and date in one message jumps straight to hotel search.
	assert.Equal(t, types.StateHotelSearch, guidance.ConversationState)
	assert.LessOrEqual(t, len(guidance.Hints), 5)
	assert.NotEmpty(t, guidance.NextSteps)
}

func TestAdvance_EmptyMessageDegradesGracefully(t *testing.T) {
	pipeline := newTestPipeline(time.June)

	guidance := pipeline.Advance(context.Background(), nil, types.StateInitial, 0)

	assert.Equal(t, types.StateInitial, guidance.ConversationState)
	assert.Empty(t, guidance.ExtractedEntities)
	assert.NotEmpty(t, guidance.Hints)
}

func TestAdvance_ProgressesAcrossTurns(t *testing.T) {
	pipeline := newTestPipeline(time.June)
	ctx := context.Background()

	history := []types.ChatTurn{userTurn("Thinking about a trip")}
	g := pipeline.Advance(ctx, history, types.StateInitial, 1)
	assert.Equal(t, types.StateDestinationSelection, g.ConversationState)

	history = append(history, userTurn("Let's do Tokyo"))
	g = pipeline.Advance(ctx, history, g.ConversationState, 2)
	assert.Equal(t, types.StateDateSelection, g.ConversationState)

	history = append(history, userTurn("Sometime in April"))
	g = pipeline.Advance(ctx, history, g.ConversationState, 3)
	assert.Equal(t, types.StateHotelSearch, g.ConversationState)

	history = append(history, userTurn("A hotel near Shinjuku would be great"))
	g = pipeline.Advance(ctx, history, g.ConversationState, 4)
	assert.Equal(t, types.StateFlightSearch, g.ConversationState)
}
