package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures journal queries.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	SessionID string // exact match when set
}

// ExamEventRecord is one stored exam lifecycle event.
type ExamEventRecord struct {
	Sequence  int64
	SessionID string
	Type      string
	Username  string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// ExamEventRepo appends and queries exam events.
type ExamEventRepo interface {
	Append(ctx context.Context, rec ExamEventRecord) (int64, error)

	// Query returns events in ascending sequence order.
	Query(ctx context.Context, opts QueryOpts) ([]ExamEventRecord, error)
}

// Attempt is a completed exam as remembered locally.
type Attempt struct {
	Sequence       int64
	SessionID      string
	Username       string
	Kind           string
	Title          string
	Class          string
	SubjectCodes   string
	ExamID         string
	Total          int
	Correct        int
	Percentage     float64
	Passed         bool
	TimeTaken      string
	ElapsedSeconds int
	CompletedAt    time.Time
}

// AttemptStats aggregates the attempt history.
type AttemptStats struct {
	Attempts          int
	Passed            int
	AveragePercentage float64
	BestPercentage    float64
	TotalSeconds      int
	Questions         int
	CorrectAnswers    int
}

// AttemptRepo persists completed attempts.
type AttemptRepo interface {
	// Save stores an attempt. Saving the same session twice is a no-op.
	Save(ctx context.Context, a Attempt) error

	// List returns attempts, newest first.
	List(ctx context.Context, limit int) ([]Attempt, error)

	Stats(ctx context.Context) (AttemptStats, error)
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLM request with its sequence and time.
type LLMRequestEvent struct {
	LLMRequestEventData
	Sequence  int64
	CreatedAt time.Time
}

// LLMEventRepo records LLM API calls.
type LLMEventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns requests, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
}
