package exam

import (
	"math/rand/v2"
	"strings"
)

// Report is the payload handed to ReportSink.SubmitReport once a session
// completes.
type Report struct {
	Username     string
	Score        float64
	SubtopicID   *int64  // nil outside subtopic exams
	ExamID       *string // set only for multi-subject exams
	TimeTaken    string
	Class        string
	SubjectCodes string
	ExamTitle    string
}

const examIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SubjectCode returns the first three letters of a subject, uppercased.
func SubjectCode(subject string) string {
	r := []rune(strings.TrimSpace(subject))
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

// SubjectCodes concatenates the code of every subject in order.
func SubjectCodes(subjects []string) string {
	var b strings.Builder
	for _, s := range subjects {
		b.WriteString(SubjectCode(s))
	}
	return b.String()
}

// GenerateExamID builds an id from the first subject's code and a random
// four-character uppercase alphanumeric suffix. A nil rnd uses the global
// source.
func GenerateExamID(subjects []string, rnd *rand.Rand) string {
	prefix := ""
	if len(subjects) > 0 {
		prefix = SubjectCode(subjects[0])
	}
	intN := rand.IntN
	if rnd != nil {
		intN = rnd.IntN
	}
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = examIDAlphabet[intN(len(examIDAlphabet))]
	}
	return prefix + string(suffix)
}

// ExamTitle joins the subject names and appends the class.
func ExamTitle(subjects []string, class string) string {
	return strings.TrimSpace(strings.Join(subjects, ", ") + " " + class)
}

// Title returns the display title for an exam with these params.
func (p Params) Title() string {
	switch {
	case len(p.Subjects) > 0:
		return ExamTitle(p.Subjects, p.Class)
	case p.Subtopic != "":
		return ExamTitle([]string{p.Subtopic}, p.Class)
	case p.Topic != "":
		return ExamTitle([]string{p.Topic}, p.Class)
	case p.Subject != "":
		return ExamTitle([]string{p.Subject}, p.Class)
	default:
		return ExamTitle(nil, p.Class)
	}
}

// subjects returns the subjects the report is coded against.
func (p Params) subjects() []string {
	if len(p.Subjects) > 0 {
		return p.Subjects
	}
	if p.Subject != "" {
		return []string{p.Subject}
	}
	return nil
}

// BuildReport assembles the report for a finished session. examID is
// attached only when the params describe a multi-subject exam.
func BuildReport(u User, p Params, r Results, examID string) Report {
	rep := Report{
		Username:     u.Username,
		Score:        r.Percentage,
		TimeTaken:    r.TimeTaken,
		Class:        p.Class,
		SubjectCodes: SubjectCodes(p.subjects()),
		ExamTitle:    p.Title(),
	}
	if p.Kind == KindSubtopic && p.SubtopicID != nil {
		id := *p.SubtopicID
		rep.SubtopicID = &id
	}
	if len(p.Subjects) > 0 && examID != "" {
		id := examID
		rep.ExamID = &id
	}
	return rep
}
