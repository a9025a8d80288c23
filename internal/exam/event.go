package exam

import (
	"context"
	"time"
)

// EventType names a lifecycle event published by a session.
type EventType string

const (
	EventStarted    EventType = "exam.started"
	EventLoaded     EventType = "exam.loaded"
	EventChecked    EventType = "answer.checked"
	EventUnanswered EventType = "exam.unanswered"
	EventCompleted  EventType = "exam.completed"
	EventAbandoned  EventType = "exam.abandoned"
)

// Event is a single session lifecycle record. Only the fields relevant to
// Type are populated.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	Kind      Kind      `json:"kind"`
	Class     string    `json:"class"`
	Title     string    `json:"title"`
	At        time.Time `json:"at"`

	// exam.loaded
	QuestionCount int    `json:"question_count,omitempty"`
	LoadError     string `json:"load_error,omitempty"`

	// answer.checked
	QuestionID string `json:"question_id,omitempty"`
	Index      int    `json:"index,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Correct    bool   `json:"correct,omitempty"`

	// exam.unanswered
	Unanswered []int `json:"unanswered,omitempty"`

	// exam.completed
	Results      *Results `json:"results,omitempty"`
	SubjectCodes string   `json:"subject_codes,omitempty"`
	ExamID       string   `json:"exam_id,omitempty"`
}

// Publisher delivers session events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
