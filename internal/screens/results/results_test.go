package results

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/exam"
)

func testResults(passed bool) exam.Results {
	if passed {
		return exam.ComputeResults(10, 8, 125)
	}
	return exam.ComputeResults(10, 3, 61)
}

func TestResultsScreen_Title(t *testing.T) {
	s := New("Mathematics JSS2", testResults(true))
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestResultsScreen_DisplayPass(t *testing.T) {
	s := New("Mathematics JSS2", testResults(true))
	view := s.View(80, 24)
	for _, want := range []string{"PASS", "8/10", "80.0%", "02:05"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestResultsScreen_DisplayFail(t *testing.T) {
	s := New("", testResults(false))
	if view := s.View(80, 24); !strings.Contains(view, "FAIL") {
		t.Errorf("expected FAIL verdict:\n%s", view)
	}
}

func TestResultsScreen_EnterQuits(t *testing.T) {
	s := New("", testResults(true))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Enter should quit")
	}
}

func TestResultsScreen_StatusFrozen(t *testing.T) {
	s := New("", testResults(true)).WithStreak(4, true)
	st := s.Status()
	if st.Elapsed != "02:05" || st.Streak != 4 || !st.StreakKnown {
		t.Errorf("Status = %+v", st)
	}
}
