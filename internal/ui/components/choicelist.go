package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// ChoiceList renders the options of a choice question and tracks the
// highlighted row. It does not own the recorded answer; callers pass it in
// when rendering.
type ChoiceList struct {
	Options []string
	Cursor  int
}

// NewChoiceList creates a list with the cursor on the recorded answer, or on
// the first option when there is none.
func NewChoiceList(options []string, recorded string) ChoiceList {
	c := ChoiceList{Options: options}
	for i, o := range options {
		if o == recorded {
			c.Cursor = i
			break
		}
	}
	return c
}

// Update moves the cursor on up/down. It reports the option index picked by
// a digit key, or -1.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, int) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, -1
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
		return c, -1
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
		return c, -1
	case "space":
		return c, c.Cursor
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i < len(c.Options) {
			c.Cursor = i
			return c, i
		}
	}
	return c, -1
}

// Highlighted returns the option under the cursor.
func (c ChoiceList) Highlighted() (string, bool) {
	if c.Cursor < 0 || c.Cursor >= len(c.Options) {
		return "", false
	}
	return c.Options[c.Cursor], true
}

// View renders the options. Once graded, the authoritative option is shown
// in green and a wrong pick in red.
func (c ChoiceList) View(recorded, authoritative string, graded bool) string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !graded {
			prefix = "▸ "
		}
		mark := " "
		if opt == recorded {
			mark = "●"
		}
		line := fmt.Sprintf("%s%d) %s %s", prefix, i+1, mark, opt)

		var style lipgloss.Style
		switch {
		case graded && opt == authoritative:
			style = theme.Correct
		case graded && opt == recorded:
			style = theme.Incorrect
		case graded:
			style = theme.Dim
		case i == c.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
