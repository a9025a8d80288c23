package exam

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func renderLoading(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Loading questions...")
}

func (s *ExamScreen) renderEmpty(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Body, width, "No questions available for this exam."))
	b.WriteString("\n")
	if s.loadNotice && s.snap.LoadError != nil {
		b.WriteString("\n")
		notice := theme.Notice.Render("Could not load questions: " + s.snap.LoadError.Error())
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, notice))
		b.WriteString("\n")
	}
	b.WriteString(s.renderFlash(width))
	return b.String()
}

func (s *ExamScreen) renderReview(width int) string {
	positions := make([]string, len(s.snap.Unanswered))
	for i, p := range s.snap.Unanswered {
		positions[i] = strconv.Itoa(p)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title, width, "Some questions are unanswered"))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Body, width, "Questions: "+strings.Join(positions, ", ")))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Hint, width,
		"R goes to the first unanswered question, Esc stays here, F submits anyway."))
	b.WriteString("\n")
	b.WriteString(s.renderFlash(width))
	return b.String()
}

func (s *ExamScreen) renderQuestion(width int) string {
	snap := s.snap
	q := snap.Question

	var b strings.Builder

	info := theme.Selected.Render(fmt.Sprintf("  Question %d of %d", snap.Index+1, snap.Total))
	bar := components.NewProgressBar("", float64(snap.Index+1)/float64(snap.Total), false, min(30, width/3))
	pad := width - lipgloss.Width(info) - lipgloss.Width(bar.View()) - 4
	if pad > 0 {
		info += strings.Repeat(" ", pad) + bar.View()
	}
	b.WriteString(info)
	b.WriteString("\n")
	b.WriteString(renderStatusStrip(snap, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	content := lipgloss.NewStyle().
		Width(max(width-4, 10)).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Content)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, content))
	b.WriteString("\n")
	if q.Image != "" {
		b.WriteString(layout.Centered(theme.Dim, width, "[image] "+q.Image))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.Type.IsChoice() {
		list := s.choices.View(snap.Answer, q.Answer, snap.Checked)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list))
	} else {
		b.WriteString(layout.Centered(lipgloss.NewStyle(), width, "Answer: "+s.input.View()))
		b.WriteString("\n")
	}

	if snap.Checked {
		b.WriteString("\n")
		b.WriteString(renderVerdict(snap, width))
		b.WriteString("\n")
		if snap.NarrationOpen {
			b.WriteString("\n")
			b.WriteString(renderNarration(snap.Narration, width))
		} else if !snap.NarrationReady && snap.State == exam.StateAwaitingNext {
			b.WriteString(layout.Centered(theme.Hint, width, "Fetching explanation..."))
			b.WriteString("\n")
		}
	}

	b.WriteString(s.renderFlash(width))
	return b.String()
}

func renderVerdict(snap exam.Snapshot, width int) string {
	if snap.Correct {
		return layout.Centered(theme.Correct, width, "Correct!")
	}
	msg := "Incorrect."
	if snap.Question != nil && snap.Question.Answer != "" {
		msg = fmt.Sprintf("Incorrect. The answer is %s.", snap.Question.Answer)
	}
	return layout.Centered(theme.Incorrect, width, msg)
}

func renderNarration(blocks []exam.NarrationBlock, width int) string {
	var b strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case exam.BlockImage:
			b.WriteString(theme.Dim.Render("[image] " + block.Value))
		case exam.BlockVideo:
			b.WriteString(theme.Dim.Render("[video] " + block.Value))
		default:
			b.WriteString(theme.Body.Render(block.Value))
		}
		b.WriteString("\n")
	}
	card := theme.Card.Width(max(width-8, 20)).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}

// renderStatusStrip draws one cell per question: checked ones in their grade
// color, answered ones highlighted, the current one bracketed.
func renderStatusStrip(snap exam.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, st := range snap.Status {
		cell := "·"
		style := theme.Dim
		switch {
		case st.Checked && st.Correct:
			cell, style = "✓", theme.Correct
		case st.Checked:
			cell, style = "✗", theme.Incorrect
		case st.Answered:
			cell, style = "•", theme.Unselected
		}
		if i == snap.Index {
			cell = "[" + cell + "]"
		} else {
			cell = " " + cell + " "
		}
		if lipgloss.Width(b.String())+3 > width-4 {
			b.WriteString(theme.Dim.Render("…"))
			break
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

func (s *ExamScreen) renderFlash(width int) string {
	if s.flash == "" {
		return ""
	}
	return "\n" + layout.Centered(theme.Hint, width, s.flash)
}
