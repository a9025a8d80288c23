package exam

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNetworkFailure wraps any failed fetch or post against the backend.
	ErrNetworkFailure = errors.New("network failure")

	// ErrAnswerRequired is returned by Check when the current question has no
	// recorded answer.
	ErrAnswerRequired = errors.New("an answer is required before checking")

	ErrOutOfRange       = errors.New("question index out of range")
	ErrInvalidState     = errors.New("operation not allowed in current state")
	ErrUnknownQuestion  = errors.New("question does not belong to this session")
	ErrAlreadyFinalized = errors.New("session already finalized")
	ErrSessionClosed    = errors.New("session closed")

	ErrNoSubjects = errors.New("select at least one subject")
	ErrSubjectCap = errors.New("subject limit reached for this class")
)

// UnansweredError is returned by Finalize when questions are still open and
// the submission was not forced.
type UnansweredError struct {
	// Positions are 1-based question numbers for display.
	Positions []int
}

func (e *UnansweredError) Error() string {
	parts := make([]string, len(e.Positions))
	for i, p := range e.Positions {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%d unanswered question(s): %s", len(e.Positions), strings.Join(parts, ", "))
}

// ValidationError reports invalid exam parameters. It blocks only the action
// that triggered it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
