package exam

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/results"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

const answerPlaceholder = "Type your answer..."

// ExamScreen implements screen.Screen over a single exam session.
type ExamScreen struct {
	ctx    context.Context
	sess   *exam.Session
	logger logging.Logger

	snap    exam.Snapshot
	shownID string // question the inputs were built for
	choices components.ChoiceList
	input   components.TextInput

	loadNotice bool   // load error notice still visible
	flash      string // one-line notice for rejected actions
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)
var _ screen.StatusProvider = (*ExamScreen)(nil)

// New creates the screen. ctx bounds the question fetch.
func New(ctx context.Context, sess *exam.Session, logger logging.Logger) *ExamScreen {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ExamScreen{
		ctx:    ctx,
		sess:   sess,
		logger: logger,
		snap:   sess.Snapshot(),
	}
}

func (s *ExamScreen) Init() tea.Cmd {
	return tea.Batch(s.load(), tickCmd())
}

func (s *ExamScreen) Title() string {
	if s.snap.Title != "" {
		return s.snap.Title
	}
	return "Exam"
}

func (s *ExamScreen) Status() layout.Status {
	return layout.Status{
		Elapsed:     exam.FormatElapsed(s.snap.Elapsed),
		Streak:      s.snap.Streak,
		StreakKnown: s.snap.StreakKnown,
	}
}

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.snap.State == exam.StateLoading:
		return nil
	case s.loadNotice:
		return []layout.KeyHint{{Key: "Enter", Description: "Dismiss"}}
	case s.snap.Total == 0:
		return []layout.KeyHint{{Key: "S", Description: "Finish"}}
	case s.snap.State == exam.StateReviewingUnanswered:
		return []layout.KeyHint{
			{Key: "R", Description: "Go to first unanswered"},
			{Key: "Esc", Description: "Stay here"},
			{Key: "F", Description: "Submit anyway"},
		}
	case s.snap.State == exam.StateAwaitingNext:
		hints := []layout.KeyHint{{Key: "Enter/N", Description: "Next"}}
		if s.snap.NarrationReady {
			hints = append(hints, layout.KeyHint{Key: "E", Description: "Explanation"})
		}
		return append(hints,
			layout.KeyHint{Key: "←→", Description: "Jump"},
			layout.KeyHint{Key: "S", Description: "Submit"},
		)
	case s.textEntry():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "PgUp/PgDn", Description: "Jump"},
			{Key: "Ctrl+S", Description: "Submit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "1-9", Description: "Choose"},
			{Key: "Enter", Description: "Check"},
			{Key: "←→", Description: "Jump"},
			{Key: "S", Description: "Submit"},
		}
	}
}

func (s *ExamScreen) View(width, height int) string {
	switch {
	case s.snap.State == exam.StateLoading:
		return renderLoading(width, height)
	case s.snap.Total == 0:
		return s.renderEmpty(width)
	case s.snap.State == exam.StateReviewingUnanswered:
		return s.renderReview(width)
	}
	return s.renderQuestion(width)
}

func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case tickMsg:
		return s.handleTick()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.textEntry() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ExamScreen) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{Err: s.sess.Load(s.ctx)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *ExamScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil && !errors.Is(msg.Err, exam.ErrSessionClosed) {
		s.loadNotice = true
	}
	return s.refresh()
}

func (s *ExamScreen) handleTick() (screen.Screen, tea.Cmd) {
	s.sess.Tick()
	next, cmd := s.refresh()
	if s.snap.State == exam.StateCompleted {
		return next, cmd
	}
	return next, tea.Batch(cmd, tickCmd())
}

// refresh re-reads the session and rebuilds the answer widgets when the
// current question changed. A completed session hands over to the results
// screen.
func (s *ExamScreen) refresh() (screen.Screen, tea.Cmd) {
	s.snap = s.sess.Snapshot()

	if s.snap.State == exam.StateCompleted && s.snap.Results != nil {
		next := results.New(s.snap.Title, *s.snap.Results).WithStreak(s.snap.Streak, s.snap.StreakKnown)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}

	q := s.snap.Question
	if q == nil {
		s.shownID = ""
		return s, nil
	}
	if q.ID != s.shownID {
		s.shownID = q.ID
		s.choices = components.NewChoiceList(q.Options, s.snap.Answer)
		s.input = components.NewTextInput(answerPlaceholder, s.snap.Answer, 200)
		if s.snap.Checked {
			s.input.Submit(s.snap.Correct)
		}
		return s, s.input.Init()
	}
	if s.snap.Checked {
		s.input.Submit(s.snap.Correct)
	}
	return s, nil
}

// textEntry reports whether keystrokes belong to the free-text input.
func (s *ExamScreen) textEntry() bool {
	return s.snap.State == exam.StateInProgress &&
		!s.loadNotice &&
		s.snap.Question != nil &&
		!s.snap.Question.Type.IsChoice()
}

func (s *ExamScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	s.flash = ""

	if s.snap.State == exam.StateLoading {
		return s, nil
	}

	if s.loadNotice {
		switch key {
		case "enter", "esc", "space":
			s.loadNotice = false
		}
		return s, nil
	}

	switch s.snap.State {
	case exam.StateReviewingUnanswered:
		return s.handleReviewKey(key)
	case exam.StateAwaitingNext:
		return s.handleAwaitingKey(key)
	case exam.StateInProgress:
		if s.textEntry() {
			return s.handleTextKey(msg, key)
		}
		return s.handleChoiceKey(msg, key)
	}
	return s, nil
}

// handleNavKey covers the keys shared by every question state. It reports
// false when the key is not a navigation key.
func (s *ExamScreen) handleNavKey(key string) (screen.Screen, tea.Cmd, bool) {
	switch key {
	case "left", "pgup":
		next, cmd := s.jump(s.snap.Index - 1)
		return next, cmd, true
	case "right", "pgdown":
		next, cmd := s.jump(s.snap.Index + 1)
		return next, cmd, true
	case "s", "ctrl+s":
		next, cmd := s.submit(false)
		return next, cmd, true
	}
	return s, nil, false
}

func (s *ExamScreen) handleChoiceKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	if next, cmd, ok := s.handleNavKey(key); ok {
		return next, cmd
	}
	if key == "enter" {
		if s.snap.Question != nil && len(s.snap.Question.Options) > 0 {
			if opt, ok := s.choices.Highlighted(); ok {
				s.record(opt)
			}
		}
		return s.check()
	}

	var picked int
	s.choices, picked = s.choices.Update(msg)
	if picked >= 0 {
		s.record(s.choices.Options[picked])
	}
	return s.refresh()
}

func (s *ExamScreen) handleTextKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "pgup", "pgdown", "ctrl+s":
		next, cmd, _ := s.handleNavKey(key)
		return next, cmd
	case "enter":
		return s.check()
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != before && v != "" {
		s.record(v)
		s.snap = s.sess.Snapshot()
	}
	return s, cmd
}

func (s *ExamScreen) handleAwaitingKey(key string) (screen.Screen, tea.Cmd) {
	if next, cmd, ok := s.handleNavKey(key); ok {
		return next, cmd
	}
	switch key {
	case "e":
		if !s.sess.ToggleNarration() {
			s.flash = "Explanation is still loading."
		}
		return s.refresh()
	case "enter", "n":
		return s.advance()
	}
	return s, nil
}

func (s *ExamScreen) handleReviewKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "r":
		s.report(s.sess.Resume(true))
	case "esc":
		s.report(s.sess.Resume(false))
	case "f":
		s.report(s.sess.Finalize(true))
	}
	return s.refresh()
}

func (s *ExamScreen) record(value string) {
	s.report(s.sess.RecordCurrent(value))
}

func (s *ExamScreen) check() (screen.Screen, tea.Cmd) {
	if _, err := s.sess.Check(); err != nil {
		if errors.Is(err, exam.ErrAnswerRequired) {
			s.flash = "Choose or type an answer first."
		} else {
			s.report(err)
		}
	}
	return s.refresh()
}

func (s *ExamScreen) advance() (screen.Screen, tea.Cmd) {
	var unanswered *exam.UnansweredError
	if err := s.sess.Advance(); err != nil && !errors.As(err, &unanswered) {
		s.report(err)
	}
	return s.refresh()
}

func (s *ExamScreen) jump(i int) (screen.Screen, tea.Cmd) {
	if i < 0 || i >= s.snap.Total {
		return s, nil
	}
	s.report(s.sess.JumpTo(i))
	return s.refresh()
}

func (s *ExamScreen) submit(force bool) (screen.Screen, tea.Cmd) {
	var unanswered *exam.UnansweredError
	if err := s.sess.Finalize(force); err != nil && !errors.As(err, &unanswered) {
		s.report(err)
	}
	return s.refresh()
}

// report logs unexpected session errors and surfaces them as a flash line.
func (s *ExamScreen) report(err error) {
	if err == nil {
		return
	}
	s.logger.Warn("exam action rejected", "error", err, "state", s.snap.State.String())
	s.flash = err.Error()
}
