package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/studyhall/internal/logging"
)

// eventBuffer bounds the number of queued, unpublished events.
const eventBuffer = 64

// Config wires a session to its collaborators. Source and Sink are
// required; everything else is optional.
type Config struct {
	Source    QuestionSource
	Sink      ReportSink
	Explainer Explainer
	Publisher Publisher
	Logger    logging.Logger

	// Now overrides the wall clock, mainly for tests.
	Now func() time.Time
	// Rand drives exam id generation.
	Rand *rand.Rand
	// SessionID overrides the generated session id.
	SessionID string
}

// Session owns one exam attempt: the loaded questions, the answer map, the
// current position, the clock and the final results.
//
// A single controller drives a session, but the side calls it dispatches
// (streak, narration, report) complete on their own goroutines, so every
// method takes the session lock.
type Session struct {
	mu sync.Mutex

	id     string
	user   User
	params Params
	examID string

	source    QuestionSource
	sink      ReportSink
	explainer Explainer
	publisher Publisher
	logger    logging.Logger
	clock     *Clock

	state     State
	loading   bool
	loadErr   error
	questions []Question
	positions map[string]int
	answers   map[string]string
	// checked is the correctness side table; presence means "checked".
	checked       map[string]bool
	current       int
	narrationOpen bool
	narrations    map[string][]NarrationBlock
	narrating     map[string]bool
	unanswered    []int
	results       *Results
	report        *Report
	streak        int
	streakKnown   bool

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
	closed bool

	events   chan Event
	pending  sync.WaitGroup
	pumpDone chan struct{}
}

// New creates a session in the Loading state. Invalid user or params are
// reported as *ValidationError.
func New(u User, p Params, cfg Config) (*Session, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("exam: question source and report sink are required")
	}

	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id,
		user:       u,
		params:     p,
		source:     cfg.Source,
		sink:       cfg.Sink,
		explainer:  cfg.Explainer,
		publisher:  cfg.Publisher,
		logger:     logger.With("session_id", id, "kind", string(p.Kind)),
		clock:      NewClock(cfg.Now),
		state:      StateLoading,
		positions:  map[string]int{},
		answers:    map[string]string{},
		checked:    map[string]bool{},
		narrations: map[string][]NarrationBlock{},
		narrating:  map[string]bool{},
		ctx:        ctx,
		cancel:     cancel,
	}
	if len(p.Subjects) > 0 {
		s.examID = GenerateExamID(p.Subjects, cfg.Rand)
	}
	if s.publisher != nil {
		s.events = make(chan Event, eventBuffer)
		s.pumpDone = make(chan struct{})
		go s.pump()
	}

	s.mu.Lock()
	s.emit(Event{Type: EventStarted})
	s.mu.Unlock()
	return s, nil
}

// Load fetches the question set and moves the session to InProgress. A fetch
// failure leaves the set empty but still advances the state; the returned
// error wraps ErrNetworkFailure so the caller can show a notice.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateLoading || s.loading {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.loading = true
	query := s.params.Query()
	s.mu.Unlock()

	qs, err := s.source.FetchQuestions(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		// The owner went away while the fetch was in flight.
		return ErrSessionClosed
	}

	if err != nil {
		s.logger.LogError(err, "question load failed")
		s.loadErr = fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		qs = nil
	}
	s.setQuestions(qs)
	s.state = StateInProgress
	s.current = 0
	s.clock.Start()

	e := Event{Type: EventLoaded, QuestionCount: len(s.questions)}
	if s.loadErr != nil {
		e.LoadError = s.loadErr.Error()
	}
	s.emit(e)
	s.logger.Info("questions loaded", "count", len(s.questions))
	return s.loadErr
}

func (s *Session) setQuestions(qs []Question) {
	s.questions = make([]Question, 0, len(qs))
	for _, q := range qs {
		if _, dup := s.positions[q.ID]; dup || q.ID == "" {
			s.logger.Warn("dropping question with missing or duplicate id", "question_id", q.ID)
			continue
		}
		q.Options = slices.Clone(q.Options)
		s.positions[q.ID] = len(s.questions)
		s.questions = append(s.questions, q)
	}
}

// RecordAnswer upserts the answer for a question. The value is not checked
// against the question type.
func (s *Session) RecordAnswer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if _, ok := s.positions[questionID]; !ok {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value
	return nil
}

// RecordCurrent records an answer for the current question.
func (s *Session) RecordCurrent(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	if len(s.questions) == 0 {
		return ErrOutOfRange
	}
	s.answers[s.questions[s.current].ID] = value
	return nil
}

func (s *Session) editable() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.state == StateLoading:
		return ErrInvalidState
	case s.state == StateCompleted:
		return ErrAlreadyFinalized
	}
	return nil
}

// Check grades the current question against its authoritative answer and
// moves to AwaitingNext. The streak update and narration fetch are
// dispatched in the background.
func (s *Session) Check() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	if s.state != StateInProgress {
		return false, ErrInvalidState
	}
	if len(s.questions) == 0 {
		return false, ErrOutOfRange
	}

	q := s.questions[s.current]
	answer, ok := s.answers[q.ID]
	if !ok || answer == "" {
		return false, ErrAnswerRequired
	}

	correct := Grade(answer, q.Answer)
	s.checked[q.ID] = correct
	s.state = StateAwaitingNext
	s.narrationOpen = false

	s.emit(Event{
		Type:       EventChecked,
		QuestionID: q.ID,
		Index:      s.current,
		Answer:     answer,
		Correct:    correct,
	})

	s.spawn(s.updateStreak)
	if _, cached := s.narrations[q.ID]; !cached && !s.narrating[q.ID] {
		s.narrating[q.ID] = true
		s.spawn(func(ctx context.Context) { s.fetchNarration(ctx, q) })
	}
	return correct, nil
}

// Advance moves to the next question, or finalizes at the last one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateAwaitingNext {
		return ErrInvalidState
	}
	if s.current >= len(s.questions)-1 {
		return s.finalize(false)
	}
	s.moveTo(s.current + 1)
	return nil
}

// JumpTo moves to question index i. The target is shown in its own state:
// AwaitingNext if it was already checked, InProgress otherwise.
func (s *Session) JumpTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	switch s.state {
	case StateLoading:
		return ErrInvalidState
	case StateCompleted:
		return ErrAlreadyFinalized
	}
	if i < 0 || i >= len(s.questions) {
		return ErrOutOfRange
	}
	s.unanswered = nil
	s.moveTo(i)
	return nil
}

func (s *Session) moveTo(i int) {
	s.current = i
	s.narrationOpen = false
	if _, ok := s.checked[s.questions[i].ID]; ok {
		s.state = StateAwaitingNext
	} else {
		s.state = StateInProgress
	}
}

// Finalize completes the session. Without force, open questions move the
// session to ReviewingUnanswered and an *UnansweredError is returned.
func (s *Session) Finalize(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.finalize(force)
}

func (s *Session) finalize(force bool) error {
	switch s.state {
	case StateLoading:
		return ErrInvalidState
	case StateCompleted:
		return ErrAlreadyFinalized
	}

	var open []int
	for i, q := range s.questions {
		if _, ok := s.answers[q.ID]; !ok {
			open = append(open, i+1)
		}
	}
	if len(open) > 0 && !force {
		s.unanswered = open
		s.state = StateReviewingUnanswered
		s.narrationOpen = false
		s.emit(Event{Type: EventUnanswered, Unanswered: slices.Clone(open)})
		return &UnansweredError{Positions: slices.Clone(open)}
	}

	correct := 0
	for _, ok := range s.checked {
		if ok {
			correct++
		}
	}
	r := ComputeResults(len(s.questions), correct, s.clock.Tick())
	s.results = &r
	s.unanswered = nil
	s.narrationOpen = false
	s.state = StateCompleted

	rep := BuildReport(s.user, s.params, r, s.examID)
	s.report = &rep
	s.spawnDetached(func(ctx context.Context) { s.submitReport(ctx, rep) })

	s.emit(Event{
		Type:         EventCompleted,
		Results:      &r,
		SubjectCodes: rep.SubjectCodes,
		ExamID:       s.examID,
	})
	s.logger.Info("exam completed",
		"correct", r.Correct, "total", r.Total,
		"percentage", r.Percentage, "time_taken", r.TimeTaken)
	return nil
}

// Resume leaves ReviewingUnanswered. With jumpToFirst the session moves to
// the first unanswered question; otherwise it stays on the current one.
func (s *Session) Resume(jumpToFirst bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateReviewingUnanswered {
		return ErrInvalidState
	}
	target := s.current
	if jumpToFirst && len(s.unanswered) > 0 {
		target = s.unanswered[0] - 1
	}
	s.unanswered = nil
	s.moveTo(target)
	return nil
}

// ToggleNarration expands or collapses the explanation of the current
// question. It reports false when no narration is ready yet.
func (s *Session) ToggleNarration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingNext || len(s.questions) == 0 {
		return false
	}
	if _, ok := s.narrations[s.questions[s.current].ID]; !ok {
		return false
	}
	s.narrationOpen = !s.narrationOpen
	return true
}

// Tick recomputes elapsed seconds. After completion the elapsed time is
// frozen at the value recorded in the results.
func (s *Session) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results != nil {
		return s.results.ElapsedSeconds
	}
	return s.clock.Tick()
}

// Close abandons the session. Streak and narration calls in flight are
// canceled and their results discarded; a pending report submission is
// allowed to finish. Close blocks until background work has drained.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.state != StateCompleted {
		s.emit(Event{Type: EventAbandoned})
	}
	s.closed = true
	s.cancel()
	if s.events != nil {
		close(s.events)
	}
	s.mu.Unlock()

	s.tasks.Wait()
	if s.pumpDone != nil {
		<-s.pumpDone
	}
}

// Wait blocks until every dispatched side call and queued event has been
// handled.
func (s *Session) Wait() {
	s.tasks.Wait()
	s.pending.Wait()
}

// spawn runs fn on the session context. Callers hold s.mu.
func (s *Session) spawn(fn func(ctx context.Context)) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		fn(s.ctx)
	}()
}

// spawnDetached runs fn on a context that survives Close.
func (s *Session) spawnDetached(fn func(ctx context.Context)) {
	s.tasks.Add(1)
	ctx := context.WithoutCancel(s.ctx)
	go func() {
		defer s.tasks.Done()
		fn(ctx)
	}()
}

func (s *Session) updateStreak(ctx context.Context) {
	n, err := s.sink.UpdateStreak(ctx, s.user.Username)
	if err != nil {
		s.logger.LogError(err, "streak update failed")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.streak = n
	s.streakKnown = true
}

func (s *Session) fetchNarration(ctx context.Context, q Question) {
	blocks, err := s.sink.FetchNarration(ctx, q.ID)
	if err != nil {
		s.logger.LogError(err, "narration fetch failed", "question_id", q.ID)
	}
	if len(blocks) == 0 && s.explainer != nil && ctx.Err() == nil {
		blocks, err = s.explainer.Explain(ctx, q)
		if err != nil {
			s.logger.LogError(err, "explanation fallback failed", "question_id", q.ID)
		}
	}
	if len(blocks) == 0 {
		blocks = PlaceholderNarration()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	delete(s.narrating, q.ID)
	s.narrations[q.ID] = blocks
}

func (s *Session) submitReport(ctx context.Context, r Report) {
	if err := s.sink.SubmitReport(ctx, r); err != nil {
		s.logger.LogError(err, "report submission failed")
		return
	}
	s.logger.Debug("report submitted")
}

// emit queues an event for the publisher. Callers hold s.mu. A full queue
// drops the event rather than blocking the transition.
func (s *Session) emit(e Event) {
	if s.events == nil || s.closed {
		return
	}
	e.SessionID = s.id
	e.Username = s.user.Username
	e.Kind = s.params.Kind
	e.Class = s.params.Class
	e.Title = s.params.Title()
	e.At = s.clock.now()

	s.pending.Add(1)
	select {
	case s.events <- e:
	default:
		s.pending.Done()
		s.logger.Warn("event queue full, dropping event", "type", string(e.Type))
	}
}

func (s *Session) pump() {
	defer close(s.pumpDone)
	ctx := context.Background()
	for e := range s.events {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.logger.LogError(err, "event publish failed", "type", string(e.Type))
		}
		s.pending.Done()
	}
}
