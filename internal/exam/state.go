package exam

// State is the position of a session in its lifecycle.
type State int

const (
	StateLoading State = iota
	StateInProgress
	StateAwaitingNext
	StateReviewingUnanswered
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateAwaitingNext:
		return "awaiting_next"
	case StateReviewingUnanswered:
		return "reviewing_unanswered"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
