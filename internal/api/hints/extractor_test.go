package hints

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Blurjp/pathavana/internal/types"
)

func newTestExtractor() *EntityExtractor {
	return NewEntityExtractor(NewDestinationKB(), slog.Default())
}

func TestExtract(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name     string
		input    string
		expected map[types.EntityType]string
	}{
		{
			name:  "Destination and month",
			input: "I want to plan a romantic trip to Paris in June",
			expected: map[types.EntityType]string{
				types.EntityDestination: "Paris",
				types.EntityDate:        "june",
				types.EntityActivity:    "romantic",
			},
		},
		{
			name:  "Case-insensitive known city canonicalised",
			input: "thinking about tokyo for the food",
			expected: map[types.EntityType]string{
				types.EntityDestination: "Tokyo",
				types.EntityActivity:    "food",
			},
		},
		{
			name:  "Unknown destination via proper noun pattern",
			input: "We're flying to Reykjavik next week",
			expected: map[types.EntityType]string{
				types.EntityDestination: "Reykjavik",
				types.EntityDate:        "next week",
			},
		},
		{
			name:  "Budget tier keyword",
			input: "Something cheap, we're backpacking",
			expected: map[types.EntityType]string{
				types.EntityBudget: "budget",
			},
		},
		{
			name:  "Budget amount outranks tier keyword",
			input: "Luxury feel but around $200 a day",
			expected: map[types.EntityType]string{
				types.EntityBudget: "$200",
			},
		},
		{
			name:     "No matches yields empty set, not an error",
			input:    "hello there",
			expected: map[types.EntityType]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entities := extractor.Extract(tc.input)

			assert.Len(t, entities, len(tc.expected))
			for _, ent := range entities {
				want, ok := tc.expected[ent.Type]
				assert.True(t, ok, "unexpected entity type %s", ent.Type)
				assert.Equal(t, want, ent.Value)
				assert.GreaterOrEqual(t, ent.Confidence, 0.0)
				assert.LessOrEqual(t, ent.Confidence, 1.0)
			}
		})
	}
}

func TestExtract_AtMostOneEntityPerType(t *testing.T) {
	extractor := newTestExtractor()

	entities := extractor.Extract("Paris or Rome in June or July, museums and beaches")

	counts := map[types.EntityType]int{}
	for _, ent := range entities {
		counts[ent.Type]++
	}
	for entType, n := range counts {
		assert.Equal(t, 1, n, "type %s extracted more than once", entType)
	}
}

func TestCumulative(t *testing.T) {
	extractor := newTestExtractor()
	now := time.Now()

	history := []types.ChatTurn{
		{Role: types.RoleUser, Content: "I want to go to Paris", Timestamp: now},
		{Role: types.RoleAssistant, Content: "Paris in June is lovely", Timestamp: now},
		{Role: types.RoleUser, Content: "Sometime in June, on a budget", Timestamp: now},
	}

	entities := extractor.Cumulative(history)

	dest, ok := FindByType(entities, types.EntityDestination)
	assert.True(t, ok)
	assert.Equal(t, "Paris", dest.Value)

	date, ok := FindByType(entities, types.EntityDate)
	assert.True(t, ok)
	assert.Equal(t, "june", date.Value)

	budget, ok := FindByType(entities, types.EntityBudget)
	assert.True(t, ok)
	assert.Equal(t, "budget", budget.Value)

	// Assistant turns must not feed the entity memory: only the two user
	// turns contributed, so "Paris" appears exactly once.
	seen := 0
	for _, ent := range entities {
		if ent.Type == types.EntityDestination {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}
