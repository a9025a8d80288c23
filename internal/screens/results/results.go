package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// ResultsScreen shows the outcome of a finalized exam.
type ResultsScreen struct {
	title   string
	results exam.Results
	streak  int
	known   bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.StatusProvider = (*ResultsScreen)(nil)

// New creates a results screen.
func New(title string, r exam.Results) *ResultsScreen {
	return &ResultsScreen{title: title, results: r}
}

// WithStreak carries the last known streak into the header.
func (s *ResultsScreen) WithStreak(streak int, known bool) *ResultsScreen {
	s.streak, s.known = streak, known
	return s
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Exit"},
	}
}

func (s *ResultsScreen) Status() layout.Status {
	return layout.Status{Elapsed: s.results.TimeTaken, Streak: s.streak, StreakKnown: s.known}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	r := s.results
	var b strings.Builder

	b.WriteString(layout.Centered(theme.Title, width, "Exam complete!"))
	b.WriteString("\n")
	if s.title != "" {
		b.WriteString(layout.Centered(theme.Dim, width, s.title))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	verdict, style := "FAIL", theme.Incorrect
	if r.Passed {
		verdict, style = "PASS", theme.Correct
	}
	b.WriteString(layout.Centered(style, width, verdict))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score: %d/%d        Percentage: %.1f%%        Time: %s",
		r.Correct, r.Total, r.Percentage, r.TimeTaken)
	b.WriteString(layout.Centered(theme.Body, width, stats))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	fill := theme.Error
	if r.Passed {
		fill = theme.Success
	}
	bar := components.NewProgressBar("", r.Percentage/100, true, barWidth).WithFill(fill)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")

	return b.String()
}
