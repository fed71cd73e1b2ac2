package trainer

import "errors"

// Configuration errors returned by StartSession.
var (
	ErrNoActiveRangeSet = errors.New("no active range set")
	ErrNoActiveScenario = errors.New("no active scenario")
	ErrNoPlayableHands  = errors.New("no playable hands")
)

// UserMessage turns a StartSession error into an actionable message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoActiveRangeSet):
		return "No range set is selected. Pick one with: preflop ranges use <range-set-id>"
	case errors.Is(err, ErrNoActiveScenario):
		return "No scenario is selected. Pick one with: preflop ranges use <range-set-id> <scenario-id>"
	case errors.Is(err, ErrNoPlayableHands):
		return "This scenario has no playable hands. Enable at least one hand with: preflop ranges toggle <hand> or preflop ranges preset <ratio>"
	default:
		return err.Error()
	}
}
