package exam

import (
	"slices"
	"strings"
)

// advancedClasses are the classes on the multi-subject track.
var advancedClasses = []string{"SS3", "JAMB"}

// IsAdvancedClass reports whether class is on the advanced track.
func IsAdvancedClass(class string) bool {
	c := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(class), " ", ""))
	return slices.Contains(advancedClasses, c)
}

// SubjectCap returns how many subjects a multi-subject exam may include.
func SubjectCap(class string) int {
	if IsAdvancedClass(class) {
		return 4
	}
	return 1
}

// Selection collects the subjects for a multi-subject exam before loading
// begins. It is independent of Session.
type Selection struct {
	class    string
	subjects []string
}

// NewSelection starts an empty selection for class.
func NewSelection(class string) *Selection {
	return &Selection{class: class}
}

// Add selects a subject. Adding past the cap returns ErrSubjectCap.
// Re-adding a selected subject is a no-op.
func (s *Selection) Add(subject string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return &ValidationError{Field: "subjects", Message: "subject name is empty"}
	}
	if slices.Contains(s.subjects, subject) {
		return nil
	}
	if len(s.subjects) >= SubjectCap(s.class) {
		return ErrSubjectCap
	}
	s.subjects = append(s.subjects, subject)
	return nil
}

// Toggle adds the subject if absent, removes it otherwise.
func (s *Selection) Toggle(subject string) error {
	subject = strings.TrimSpace(subject)
	if i := slices.Index(s.subjects, subject); i >= 0 {
		s.subjects = slices.Delete(s.subjects, i, i+1)
		return nil
	}
	return s.Add(subject)
}

// Subjects returns a copy of the current selection.
func (s *Selection) Subjects() []string {
	return slices.Clone(s.subjects)
}

// Confirm validates the selection before an exam starts.
func (s *Selection) Confirm() ([]string, error) {
	if len(s.subjects) == 0 {
		return nil, ErrNoSubjects
	}
	return s.Subjects(), nil
}

// SelectSubjects builds a confirmed selection from a list in one call.
func SelectSubjects(class string, subjects []string) ([]string, error) {
	sel := NewSelection(class)
	for _, sub := range subjects {
		if err := sel.Add(sub); err != nil {
			return nil, err
		}
	}
	return sel.Confirm()
}
