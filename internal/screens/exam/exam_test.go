package exam

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/router"
	"github.com/abhisek/studyhall/internal/screens/results"
)

type stubSource struct {
	questions []exam.Question
	err       error
}

func (s *stubSource) FetchQuestions(ctx context.Context, q exam.Query) ([]exam.Question, error) {
	return s.questions, s.err
}

type stubSink struct {
	mu        sync.Mutex
	narration []exam.NarrationBlock
	reports   int
}

func (s *stubSink) UpdateStreak(ctx context.Context, username string) (int, error) {
	return 3, nil
}

func (s *stubSink) FetchNarration(ctx context.Context, id string) ([]exam.NarrationBlock, error) {
	return s.narration, nil
}

func (s *stubSink) SubmitReport(ctx context.Context, r exam.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports++
	return nil
}

func choiceQuestions() []exam.Question {
	return []exam.Question{
		{ID: "q1", Type: exam.TypeMultipleChoice, Content: "Capital of Nigeria?", Options: []string{"Lagos", "Abuja", "Kano"}, Answer: "Abuja"},
		{ID: "q2", Type: exam.TypeTrueFalse, Content: "The sun is a star.", Options: []string{"True", "False"}, Answer: "True"},
	}
}

func newTestScreen(t *testing.T, src *stubSource, sink *stubSink) (*ExamScreen, *exam.Session) {
	t.Helper()
	sess, err := exam.New(
		exam.User{Username: "ada", Class: "SS1"},
		exam.Params{Kind: exam.KindPractice, Class: "SS1"},
		exam.Config{Source: src, Sink: sink, SessionID: "screen-test"},
	)
	if err != nil {
		t.Fatalf("exam.New: %v", err)
	}
	t.Cleanup(sess.Close)
	return New(context.Background(), sess, nil), sess
}

func loaded(t *testing.T, s *ExamScreen) {
	t.Helper()
	msg := s.load()()
	s.Update(msg)
}

func press(s *ExamScreen, code rune, text string) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code, Text: text})
	return cmd
}

func TestExamScreen_LoadingView(t *testing.T) {
	s, _ := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	if view := s.View(80, 24); !strings.Contains(view, "Loading questions") {
		t.Errorf("expected loading view, got:\n%s", view)
	}
	if s.KeyHints() != nil {
		t.Error("no key hints while loading")
	}
}

func TestExamScreen_ChoiceSelectAndCheck(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, '2', "2")
	if got := sess.Answers()["q1"]; got != "Abuja" {
		t.Fatalf("recorded answer = %q, want Abuja", got)
	}

	press(s, tea.KeyEnter, "")
	if sess.State() != exam.StateAwaitingNext {
		t.Fatalf("state = %v, want awaiting_next", sess.State())
	}
	if correct, checked := sess.Correctness("q1"); !checked || !correct {
		t.Errorf("correctness = %v/%v, want checked and correct", correct, checked)
	}
	if view := s.View(80, 24); !strings.Contains(view, "Correct!") {
		t.Errorf("expected verdict in view:\n%s", view)
	}
}

func TestExamScreen_EnterRecordsHighlighted(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, tea.KeyDown, "")
	press(s, tea.KeyDown, "")
	press(s, tea.KeyEnter, "")

	if got := sess.Answers()["q1"]; got != "Kano" {
		t.Errorf("recorded answer = %q, want Kano", got)
	}
	if correct, _ := sess.Correctness("q1"); correct {
		t.Error("Kano should be graded incorrect")
	}
	if view := s.View(80, 24); !strings.Contains(view, "The answer is Abuja") {
		t.Errorf("expected the authoritative answer in view:\n%s", view)
	}
}

func TestExamScreen_TextQuestion(t *testing.T) {
	qs := []exam.Question{{ID: "t1", Type: exam.TypeShortAnswer, Content: "Chemical symbol of gold?", Answer: "Au"}}
	s, sess := newTestScreen(t, &stubSource{questions: qs}, &stubSink{})
	loaded(t, s)

	press(s, tea.KeyEnter, "")
	if sess.State() != exam.StateInProgress {
		t.Fatalf("check without an answer should be rejected, state = %v", sess.State())
	}
	if !strings.Contains(s.View(80, 24), "answer first") {
		t.Error("expected a notice asking for an answer")
	}

	press(s, 'A', "A")
	press(s, 'u', "u")
	if got := sess.Answers()["t1"]; got != "Au" {
		t.Fatalf("recorded answer = %q, want Au", got)
	}
	press(s, tea.KeyEnter, "")
	if correct, checked := sess.Correctness("t1"); !checked || !correct {
		t.Errorf("correctness = %v/%v", correct, checked)
	}
}

func TestExamScreen_TextEntryKeepsLetters(t *testing.T) {
	qs := []exam.Question{{ID: "t1", Type: exam.TypeTheory, Content: "Define osmosis.", Answer: "x"}}
	s, sess := newTestScreen(t, &stubSource{questions: qs}, &stubSink{})
	loaded(t, s)

	press(s, 's', "s")
	if sess.State() != exam.StateInProgress {
		t.Fatalf("typing s should not submit, state = %v", sess.State())
	}
	if got := sess.Answers()["t1"]; got != "s" {
		t.Errorf("recorded answer = %q, want s", got)
	}
}

func TestExamScreen_AdvanceToResults(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, '2', "2")
	press(s, tea.KeyEnter, "")
	press(s, 'n', "n")
	if sess.CurrentIndex() != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", sess.CurrentIndex())
	}

	press(s, '1', "1")
	press(s, tea.KeyEnter, "")
	cmd := press(s, tea.KeyEnter, "")

	if sess.State() != exam.StateCompleted {
		t.Fatalf("state = %v, want completed", sess.State())
	}
	if cmd == nil {
		t.Fatal("expected a screen replacement command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want ReplaceScreenMsg", cmd())
	}
	if _, ok := msg.Screen.(*results.ResultsScreen); !ok {
		t.Errorf("replacement screen = %T", msg.Screen)
	}
}

func TestExamScreen_SubmitEarlyAndReview(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, tea.KeyRight, "")
	press(s, '1', "1")
	press(s, 's', "s")
	if sess.State() != exam.StateReviewingUnanswered {
		t.Fatalf("state = %v, want reviewing_unanswered", sess.State())
	}
	if view := s.View(80, 24); !strings.Contains(view, "Questions: 1") {
		t.Errorf("review view should list position 1:\n%s", view)
	}

	press(s, 'r', "r")
	if sess.State() != exam.StateInProgress || sess.CurrentIndex() != 0 {
		t.Fatalf("resume: state=%v index=%d", sess.State(), sess.CurrentIndex())
	}

	press(s, 's', "s")
	cmd := press(s, 'f', "f")
	if sess.State() != exam.StateCompleted {
		t.Fatalf("state = %v, want completed", sess.State())
	}
	if cmd == nil {
		t.Error("force submit should hand over to the results screen")
	}
}

func TestExamScreen_ReviewEscStaysPut(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, tea.KeyRight, "")
	press(s, 's', "s")
	press(s, tea.KeyEscape, "")
	if sess.State() != exam.StateInProgress || sess.CurrentIndex() != 1 {
		t.Errorf("esc: state=%v index=%d, want in_progress at 1", sess.State(), sess.CurrentIndex())
	}
}

func TestExamScreen_JumpBounds(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, tea.KeyLeft, "")
	if sess.CurrentIndex() != 0 {
		t.Errorf("left at first question moved to %d", sess.CurrentIndex())
	}
	press(s, tea.KeyRight, "")
	press(s, tea.KeyRight, "")
	if sess.CurrentIndex() != 1 {
		t.Errorf("right past last question moved to %d", sess.CurrentIndex())
	}
}

func TestExamScreen_LoadErrorNotice(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{err: errors.New("connection refused")}, &stubSink{})
	loaded(t, s)

	view := s.View(80, 24)
	if !strings.Contains(view, "No questions available") || !strings.Contains(view, "Could not load") {
		t.Fatalf("expected empty view with notice:\n%s", view)
	}

	press(s, tea.KeyEnter, "")
	if strings.Contains(s.View(80, 24), "Could not load") {
		t.Error("Enter should dismiss the notice")
	}

	cmd := press(s, 's', "s")
	if sess.State() != exam.StateCompleted || cmd == nil {
		t.Errorf("empty exam should finish on submit, state = %v", sess.State())
	}
}

func TestExamScreen_ToggleExplanation(t *testing.T) {
	sink := &stubSink{narration: []exam.NarrationBlock{{Type: exam.BlockText, Value: "Abuja became the capital in 1991."}}}
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, sink)
	loaded(t, s)

	press(s, '2', "2")
	press(s, tea.KeyEnter, "")
	sess.Wait()

	press(s, 'e', "e")
	view := s.View(100, 30)
	if !strings.Contains(view, "became the capital") {
		t.Errorf("explanation not shown:\n%s", view)
	}
	press(s, 'e', "e")
	if strings.Contains(s.View(100, 30), "became the capital") {
		t.Error("second e should collapse the explanation")
	}
}

func TestExamScreen_TickUpdatesStatus(t *testing.T) {
	s, sess := newTestScreen(t, &stubSource{questions: choiceQuestions()}, &stubSink{})
	loaded(t, s)

	press(s, '2', "2")
	press(s, tea.KeyEnter, "")
	sess.Wait()

	_, cmd := s.Update(tickMsg{})
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	st := s.Status()
	if !strings.HasPrefix(st.Elapsed, "00:") {
		t.Errorf("Elapsed = %q", st.Elapsed)
	}
	if !st.StreakKnown || st.Streak != 3 {
		t.Errorf("streak = %d/%v, want 3/true", st.Streak, st.StreakKnown)
	}
}
