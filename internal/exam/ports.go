package exam

import "context"

// QuestionSource fetches the question set for an exam.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, q Query) ([]Question, error)
}

// ReportSink receives the side calls a session makes against the backend.
type ReportSink interface {
	UpdateStreak(ctx context.Context, username string) (int, error)
	FetchNarration(ctx context.Context, questionID string) ([]NarrationBlock, error)
	SubmitReport(ctx context.Context, r Report) error
}

// Explainer produces a narration when the backend has none.
type Explainer interface {
	Explain(ctx context.Context, q Question) ([]NarrationBlock, error)
}
