package hints

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Blurjp/pathavana/internal/types"
)

// DefaultMaxHints caps the hint list when no limit is configured.
const DefaultMaxHints = 5

// Ensure implementation satisfies the interface
var _ Generator = (*GeneratorImpl)(nil)

// Generator produces the ranked, typed hint list for a chat turn.
type Generator interface {
	Generate(ctx context.Context, entities []types.ExtractedEntity, state types.ConversationState) []types.Hint
}

// GeneratorImpl looks up per-state rule tables, augments them with
// destination-specific hints from the knowledge base, and truncates the
// result to the configured maximum. Deterministic given a fixed clock; no
// I/O and no randomness.
type GeneratorImpl struct {
	logger   *slog.Logger
	kb       *DestinationKB
	cache    *cache.Cache
	maxHints int
	now      func() time.Time
}

// NewGenerator creates a hint generator. maxHints <= 0 falls back to
// DefaultMaxHints; a nil clock falls back to time.Now.
func NewGenerator(kb *DestinationKB, logger *slog.Logger, maxHints int, now func() time.Time) *GeneratorImpl {
	if maxHints <= 0 {
		maxHints = DefaultMaxHints
	}
	if now == nil {
		now = time.Now
	}
	return &GeneratorImpl{
		logger:   logger,
		kb:       kb,
		cache:    cache.New(30*time.Minute, 10*time.Minute),
		maxHints: maxHints,
		now:      now,
	}
}

// stateHints is the static per-state rule table. Order within each list is
// precedence order; destination-specific hints are appended after them.
var stateHints = map[types.ConversationState][]types.Hint{
	types.StateInitial: {
		{Type: types.HintSuggestion, Text: "Tell me where you'd like to go, or ask for ideas", Action: "choose_destination"},
		{Type: types.HintInfo, Text: "I can plan flights, hotels and day-by-day activities in one conversation", Action: "show_capabilities"},
	},
	types.StateDestinationSelection: {
		{Type: types.HintSuggestion, Text: "Popular right now: Paris, Tokyo, Bali and Barcelona", Action: "choose_destination"},
		{Type: types.HintFilter, Text: "Narrow it down by region, vibe or flight time", Action: "filter_destinations"},
		{Type: types.HintTip, Text: "Mention what kind of trip you want (beach, food, culture) and I'll match destinations", Action: "describe_trip"},
	},
	types.StateDateSelection: {
		{Type: types.HintTip, Text: "Flexible dates usually mean cheaper flights, mid-week departures most of all", Action: "flexible_dates"},
		{Type: types.HintAction, Text: "Pick your travel dates to unlock hotel and flight search", Action: "open_calendar"},
	},
	types.StateHotelSearch: {
		{Type: types.HintAction, Text: "Search hotels for your dates", Action: "search_hotels"},
		{Type: types.HintFilter, Text: "Filter stays by neighborhood, price or rating", Action: "filter_hotels"},
	},
	types.StateFlightSearch: {
		{Type: types.HintAction, Text: "Search flights for your dates", Action: "search_flights"},
		{Type: types.HintTip, Text: "Fares are usually lowest 4-8 weeks before departure", Action: "fare_trends"},
	},
	types.StateActivityPlanning: {
		{Type: types.HintAction, Text: "Browse activities and add them to your days", Action: "browse_activities"},
		{Type: types.HintChecklist, Text: "Leave at least one unplanned afternoon per three days of travel", Action: "pace_trip"},
	},
	types.StateBudgetDiscussion: {
		{Type: types.HintBudget, Text: "Tell me a daily budget and I'll re-rank hotels and activities to fit", Action: "set_budget"},
		{Type: types.HintTip, Text: "Accommodation is usually the biggest lever; moving one neighborhood out saves 20-40%", Action: "budget_tradeoffs"},
	},
	types.StateFinalization: {
		{Type: types.HintChecklist, Text: "Check passport validity (most countries require 6 months past your return)", Action: "check_passport"},
		{Type: types.HintChecklist, Text: "Consider travel insurance before paying for non-refundable bookings", Action: "check_insurance"},
		{Type: types.HintAction, Text: "Review your full itinerary before booking", Action: "review_itinerary"},
	},
	types.StateCompleted: {
		{Type: types.HintInfo, Text: "Your trip plan is complete", Action: "view_itinerary"},
		{Type: types.HintAction, Text: "Start planning another trip", Action: "new_session"},
	},
}

// genericDestinationHints back up unknown destinations so the generator
// degrades gracefully instead of erroring.
var genericDestinationHints = []types.Hint{
	{Type: types.HintTip, Text: "I don't have local notes for that destination yet; I can still search hotels and flights", Action: "search_anyway"},
	{Type: types.HintSuggestion, Text: "Ask me to compare it against a destination I know well", Action: "compare_destinations"},
}

// Generate returns at most maxHints hints for the current state and entity
// set. Identical input (with a fixed clock) yields identical output.
func (g *GeneratorImpl) Generate(ctx context.Context, entities []types.ExtractedEntity, state types.ConversationState) []types.Hint {
	_, span := otel.Tracer("HintGenerator").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("conversation.state", string(state)),
		attribute.Int("entities.count", len(entities)),
	))
	defer span.End()

	out := make([]types.Hint, 0, g.maxHints)
	out = append(out, stateHints[state]...)
	out = append(out, g.destinationHints(entities, state)...)

	if len(out) > g.maxHints {
		out = out[:g.maxHints]
	}

	if g.logger != nil {
		g.logger.DebugContext(ctx, "Hints generated",
			slog.String("state", string(state)), slog.Int("count", len(out)))
	}
	span.SetStatus(codes.Ok, "hints generated")
	return out
}

// destinationHints derives entity-specific hints from the knowledge base.
// Unknown destinations fall back to the generic table.
func (g *GeneratorImpl) destinationHints(entities []types.ExtractedEntity, state types.ConversationState) []types.Hint {
	dest, ok := FindByType(entities, types.EntityDestination)
	if !ok {
		return nil
	}

	profile, known := g.kb.Lookup(dest.Value)
	if !known {
		return genericDestinationHints
	}

	month := g.travelMonth(entities)
	// The key must cover every entity the branches below read; budget
	// hints vary by tier, not just by destination and month.
	tier := ""
	if budget, ok := FindByType(entities, types.EntityBudget); ok {
		tier = budget.Value
	}
	key := fmt.Sprintf("%s|%d|%s|%s", dest.Value, month, state, tier)
	if cached, hit := g.cache.Get(key); hit {
		return cached.([]types.Hint)
	}

	out := make([]types.Hint, 0, 4)
	out = append(out, g.seasonalHint(dest.Value, profile, month))

	switch state {
	case types.StateHotelSearch:
		if len(profile.Neighborhoods) > 0 {
			out = append(out, types.Hint{
				Type:   types.HintRecommendation,
				Text:   fmt.Sprintf("Good areas to stay in %s: %s", dest.Value, strings.Join(profile.Neighborhoods, ", ")),
				Action: "filter_by_neighborhood",
			})
		}
	case types.StateActivityPlanning:
		if len(profile.MustSee) > 0 {
			out = append(out, types.Hint{
				Type:   types.HintRecommendation,
				Text:   fmt.Sprintf("Must-see in %s: %s", dest.Value, strings.Join(profile.MustSee, ", ")),
				Action: "add_must_see",
			})
		}
		for _, tip := range profile.InsiderTips {
			out = append(out, types.Hint{Type: types.HintInsiderTip, Text: tip, Action: "insider_tip"})
		}
	case types.StateBudgetDiscussion:
		out = append(out, g.budgetHints(dest.Value, profile, entities)...)
	}

	g.cache.Set(key, out, cache.DefaultExpiration)
	return out
}

// travelMonth prefers an explicit month-name date entity; otherwise the
// injected clock keeps seasonal hints deterministic under test.
func (g *GeneratorImpl) travelMonth(entities []types.ExtractedEntity) time.Month {
	if date, ok := FindByType(entities, types.EntityDate); ok {
		if t, err := time.Parse("January", strings.Title(date.Value)); err == nil {
			return t.Month()
		}
	}
	return g.now().Month()
}

func (g *GeneratorImpl) seasonalHint(city string, profile DestinationProfile, month time.Month) types.Hint {
	for _, m := range profile.BestMonths {
		if m == month {
			return types.Hint{
				Type:   types.HintSeasonal,
				Text:   fmt.Sprintf("%s is a great time for %s: %s", month, city, profile.SeasonNote),
				Action: "seasonal_info",
			}
		}
	}
	return types.Hint{
		Type:   types.HintSeasonal,
		Text:   fmt.Sprintf("%s is outside the best season for %s; the sweet spot is %s", month, city, monthsLabel(profile.BestMonths)),
		Action: "seasonal_info",
	}
}

func (g *GeneratorImpl) budgetHints(city string, profile DestinationProfile, entities []types.ExtractedEntity) []types.Hint {
	budget, ok := FindByType(entities, types.EntityBudget)
	if ok {
		if guidance, tierKnown := profile.BudgetTiers[budget.Value]; tierKnown {
			return []types.Hint{{
				Type:   types.HintBudget,
				Text:   fmt.Sprintf("A %s trip to %s runs about %s", budget.Value, city, guidance),
				Action: "apply_budget_tier",
			}}
		}
	}
	out := make([]types.Hint, 0, len(profile.BudgetTiers))
	for _, tier := range []string{"budget", "mid-range", "luxury"} {
		if guidance, tierKnown := profile.BudgetTiers[tier]; tierKnown {
			out = append(out, types.Hint{
				Type:   types.HintBudget,
				Text:   fmt.Sprintf("%s, %s: %s", city, tier, guidance),
				Action: "apply_budget_tier",
			})
		}
	}
	return out
}

func monthsLabel(months []time.Month) string {
	names := make([]string, 0, len(months))
	for _, m := range months {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}
