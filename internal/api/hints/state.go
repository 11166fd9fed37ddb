package hints

import (
	"github.com/Blurjp/pathavana/internal/types"
)

// finalizationTurnThreshold pushes long planning conversations toward
// finalization once the core slots are filled.
const finalizationTurnThreshold = 10

// StateTracker classifies where the user is in the trip-planning flow.
// It is a pure function of (cumulative entities, turn count, previous state);
// the state is re-derived from scratch every turn, with no transition guard.
type StateTracker struct{}

func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Next evaluates the ordered decision list below; the first matching branch
// wins. The order is load-bearing and must not be rearranged:
//
//  1. prev completed            -> completed
//  2. prev finalization         -> completed
//  3. first turn, no entities   -> initial
//  4. no destination            -> destination_selection
//  5. destination, no date      -> date_selection
//  6. prev in {initial, destination_selection, date_selection} -> hotel_search
//  7. prev hotel_search         -> flight_search
//  8. prev flight_search        -> activity_planning
//  9. prev activity_planning, budget present -> budget_discussion
// 10. prev activity_planning, turn count >= 10 -> finalization
// 11. prev budget_discussion    -> finalization
// 12. otherwise                 -> prev (hold)
func (t *StateTracker) Next(entities []types.ExtractedEntity, turnCount int, prev types.ConversationState) types.ConversationState {
	hasDestination := HasType(entities, types.EntityDestination)
	hasDate := HasType(entities, types.EntityDate)
	hasBudget := HasType(entities, types.EntityBudget)

	switch {
	case prev == types.StateCompleted:
		return types.StateCompleted
	case prev == types.StateFinalization:
		return types.StateCompleted
	case turnCount == 0 && len(entities) == 0:
		return types.StateInitial
	case !hasDestination:
		return types.StateDestinationSelection
	case !hasDate:
		return types.StateDateSelection
	case prev == "" || prev == types.StateInitial || prev == types.StateDestinationSelection || prev == types.StateDateSelection:
		return types.StateHotelSearch
	case prev == types.StateHotelSearch:
		return types.StateFlightSearch
	case prev == types.StateFlightSearch:
		return types.StateActivityPlanning
	case prev == types.StateActivityPlanning && hasBudget:
		return types.StateBudgetDiscussion
	case prev == types.StateActivityPlanning && turnCount >= finalizationTurnThreshold:
		return types.StateFinalization
	case prev == types.StateBudgetDiscussion:
		return types.StateFinalization
	default:
		return prev
	}
}
