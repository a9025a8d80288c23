package exam

import (
	"errors"
	"slices"
	"testing"
)

func TestSubjectCap(t *testing.T) {
	tests := map[string]int{"JSS1": 1, "SS2": 1, "SS3": 4, "ss 3": 4, "JAMB": 4}
	for class, want := range tests {
		if got := SubjectCap(class); got != want {
			t.Errorf("SubjectCap(%q) = %d, want %d", class, got, want)
		}
	}
}

func TestSelection_CapNonAdvanced(t *testing.T) {
	sel := NewSelection("JSS3")
	if err := sel.Add("Maths"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sel.Add("English"); !errors.Is(err, ErrSubjectCap) {
		t.Errorf("second Add = %v, want ErrSubjectCap", err)
	}
	if got := sel.Subjects(); !slices.Equal(got, []string{"Maths"}) {
		t.Errorf("Subjects = %v", got)
	}
}

func TestSelection_CapAdvanced(t *testing.T) {
	sel := NewSelection("SS3")
	for _, s := range []string{"English", "Physics", "Chemistry", "Biology"} {
		if err := sel.Add(s); err != nil {
			t.Fatalf("Add(%s): %v", s, err)
		}
	}
	if err := sel.Add("Economics"); !errors.Is(err, ErrSubjectCap) {
		t.Errorf("fifth Add = %v, want ErrSubjectCap", err)
	}
}

func TestSelection_Toggle(t *testing.T) {
	sel := NewSelection("SS3")
	_ = sel.Toggle("English")
	_ = sel.Toggle("Physics")
	_ = sel.Toggle("English")

	if got := sel.Subjects(); !slices.Equal(got, []string{"Physics"}) {
		t.Errorf("Subjects = %v, want [Physics]", got)
	}
}

func TestSelection_ConfirmEmpty(t *testing.T) {
	if _, err := NewSelection("SS3").Confirm(); !errors.Is(err, ErrNoSubjects) {
		t.Errorf("Confirm = %v, want ErrNoSubjects", err)
	}
}

func TestSelectSubjects(t *testing.T) {
	got, err := SelectSubjects("SS3", []string{"English", "English", "Physics"})
	if err != nil {
		t.Fatalf("SelectSubjects: %v", err)
	}
	if !slices.Equal(got, []string{"English", "Physics"}) {
		t.Errorf("SelectSubjects = %v", got)
	}
}
