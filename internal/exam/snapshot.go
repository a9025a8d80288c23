package exam

import (
	"maps"
	"slices"
)

// Snapshot is a consistent, copy-on-read view of a session for rendering.
type Snapshot struct {
	SessionID string
	Title     string
	State     State
	LoadError error

	Total    int
	Index    int
	Question *Question
	Answer   string
	Answered bool

	// Checked and Correct describe the current question's grading.
	Checked bool
	Correct bool

	NarrationReady bool
	NarrationOpen  bool
	Narration      []NarrationBlock

	// Status holds one entry per question, in order.
	Status []QuestionStatus

	Unanswered []int
	Results    *Results

	Elapsed     int
	Streak      int
	StreakKnown bool
}

// QuestionStatus summarizes one question for navigation displays.
type QuestionStatus struct {
	Answered bool
	Checked  bool
	Correct  bool
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:   s.id,
		Title:       s.params.Title(),
		State:       s.state,
		LoadError:   s.loadErr,
		Total:       len(s.questions),
		Index:       s.current,
		Unanswered:  slices.Clone(s.unanswered),
		Elapsed:     s.clock.Elapsed(),
		Streak:      s.streak,
		StreakKnown: s.streakKnown,
	}
	if s.results != nil {
		r := *s.results
		snap.Results = &r
		snap.Elapsed = r.ElapsedSeconds
	}

	snap.Status = make([]QuestionStatus, len(s.questions))
	for i, q := range s.questions {
		_, answered := s.answers[q.ID]
		correct, checked := s.checked[q.ID]
		snap.Status[i] = QuestionStatus{Answered: answered, Checked: checked, Correct: correct}
	}

	if len(s.questions) > 0 {
		q := s.questions[s.current]
		q.Options = slices.Clone(q.Options)
		snap.Question = &q
		snap.Answer, snap.Answered = s.answers[q.ID]
		snap.Correct, snap.Checked = s.checked[q.ID]
		if blocks, ok := s.narrations[q.ID]; ok {
			snap.NarrationReady = true
			snap.NarrationOpen = s.narrationOpen
			snap.Narration = slices.Clone(blocks)
		}
	}
	return snap
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ExamID returns the generated multi-subject exam id, empty otherwise.
func (s *Session) ExamID() string { return s.examID }

// Params returns the exam parameters.
func (s *Session) Params() Params { return s.params }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of loaded questions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// CurrentIndex returns the current question index.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Answers returns a copy of the answer map.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.answers)
}

// Correctness reports the grading of a question and whether it was checked.
func (s *Session) Correctness(questionID string) (correct, checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	correct, checked = s.checked[questionID]
	return correct, checked
}

// Narration returns the cached narration for a question.
func (s *Session) Narration(questionID string) ([]NarrationBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks, ok := s.narrations[questionID]
	return slices.Clone(blocks), ok
}

// Results returns the final results once the session is completed.
func (s *Session) Results() (Results, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		return Results{}, false
	}
	return *s.results, true
}

// Report returns the report built at completion.
func (s *Session) Report() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return Report{}, false
	}
	return *s.report, true
}

// Streak returns the last streak count reported by the backend.
func (s *Session) Streak() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak, s.streakKnown
}
