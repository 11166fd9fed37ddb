package hints

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blurjp/pathavana/internal/types"
)

// Pipeline runs text -> entities -> state -> hints for one chat turn. It is
// synchronous, stateless between calls, and safe for concurrent use; the
// session service invokes it once per inbound message.
type Pipeline struct {
	logger    *slog.Logger
	extractor *EntityExtractor
	tracker   *StateTracker
	generator Generator
}

func NewPipeline(extractor *EntityExtractor, tracker *StateTracker, generator Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger:    logger,
		extractor: extractor,
		tracker:   tracker,
		generator: generator,
	}
}

// nextSteps is the per-state follow-up table surfaced to the frontend under
// "next_steps".
var nextSteps = map[types.ConversationState][]string{
	types.StateInitial:              {"Tell me about the trip you have in mind"},
	types.StateDestinationSelection: {"Pick a destination", "Ask for destination ideas"},
	types.StateDateSelection:        {"Choose travel dates", "Ask when is the best time to go"},
	types.StateHotelSearch:          {"Search hotels", "Tell me your preferred neighborhood"},
	types.StateFlightSearch:         {"Search flights", "Tell me your departure city"},
	types.StateActivityPlanning:     {"Add activities to your days", "Ask for must-see recommendations"},
	types.StateBudgetDiscussion:     {"Set a daily budget", "Ask where to save"},
	types.StateFinalization:         {"Review your itinerary", "Confirm your bookings"},
	types.StateCompleted:            {"View your itinerary", "Start a new trip"},
}

// Advance classifies the conversation after the latest user turn and returns
// the guidance embedded in the chat response. Misses at every stage degrade
// to defaults; Advance never fails.
func (p *Pipeline) Advance(ctx context.Context, history []types.ChatTurn, prev types.ConversationState, userTurnCount int) types.Guidance {
	ctx, span := otel.Tracer("HintPipeline").Start(ctx, "Advance", trace.WithAttributes(
		attribute.Int("history.turns", len(history)),
		attribute.String("state.previous", string(prev)),
	))
	defer span.End()

	entities := p.extractor.Cumulative(history)
	state := p.tracker.Next(entities, userTurnCount, prev)
	generated := p.generator.Generate(ctx, entities, state)

	if p.logger != nil {
		p.logger.DebugContext(ctx, "Pipeline advanced",
			slog.String("state", string(state)),
			slog.Int("entities", len(entities)),
			slog.Int("hints", len(generated)))
	}
	span.SetAttributes(attribute.String("state.next", string(state)))
	span.SetStatus(codes.Ok, "pipeline advanced")

	return types.Guidance{
		Hints:             generated,
		ConversationState: state,
		ExtractedEntities: entities,
		NextSteps:         nextSteps[state],
	}
}
