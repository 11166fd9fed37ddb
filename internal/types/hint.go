package types

// HintType classifies a suggestion surfaced alongside a chat response.
type HintType string

const (
	HintSuggestion     HintType = "suggestion"
	HintTip            HintType = "tip"
	HintInfo           HintType = "info"
	HintSeasonal       HintType = "seasonal"
	HintBudget         HintType = "budget"
	HintFilter         HintType = "filter"
	HintInsiderTip     HintType = "insider_tip"
	HintRecommendation HintType = "recommendation"
	HintChecklist      HintType = "checklist"
	HintAction         HintType = "action"
)

// Hint is a short, typed suggestion. Action is an opaque identifier the
// frontend maps to a UI affordance (e.g. "search_hotels").
type Hint struct {
	Type   HintType `json:"type"`
	Text   string   `json:"text"`
	Action string   `json:"action"`
}

// EntityType classifies a structured value extracted from free text.
type EntityType string

const (
	EntityDestination EntityType = "destination"
	EntityDate        EntityType = "date"
	EntityActivity    EntityType = "activity"
	EntityBudget      EntityType = "budget"
)

// ExtractedEntity is recomputed per turn and never persisted independently.
// Confidence is always within [0, 1].
type ExtractedEntity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// ConversationState is a coarse classification of where the user is in the
// trip-planning flow. It is re-derived from scratch each turn.
type ConversationState string

const (
	StateInitial              ConversationState = "initial"
	StateDestinationSelection ConversationState = "destination_selection"
	StateDateSelection        ConversationState = "date_selection"
	StateHotelSearch          ConversationState = "hotel_search"
	StateFlightSearch         ConversationState = "flight_search"
	StateActivityPlanning     ConversationState = "activity_planning"
	StateBudgetDiscussion     ConversationState = "budget_discussion"
	StateFinalization         ConversationState = "finalization"
	StateCompleted            ConversationState = "completed"
)

// ValidStates enumerates every conversation state the tracker can emit.
var ValidStates = []ConversationState{
	StateInitial,
	StateDestinationSelection,
	StateDateSelection,
	StateHotelSearch,
	StateFlightSearch,
	StateActivityPlanning,
	StateBudgetDiscussion,
	StateFinalization,
	StateCompleted,
}

// Guidance is the output of one hint-pipeline pass for a chat turn.
type Guidance struct {
	Hints             []Hint            `json:"hints"`
	ConversationState ConversationState `json:"conversation_state"`
	ExtractedEntities []ExtractedEntity `json:"extracted_entities"`
	NextSteps         []string          `json:"next_steps"`
}
