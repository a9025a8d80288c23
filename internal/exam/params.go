package exam

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind selects the scope of an exam and, through it, the question count.
type Kind string

const (
	KindClass    Kind = "class"
	KindSubject  Kind = "subject"
	KindTopic    Kind = "topic"
	KindSubtopic Kind = "subtopic"
	KindPractice Kind = "practice"
	KindJAMB     Kind = "jamb"
)

// AllKinds lists every recognized exam kind in display order.
var AllKinds = []Kind{KindClass, KindSubject, KindTopic, KindSubtopic, KindPractice, KindJAMB}

// TargetCount returns the number of questions requested for the kind.
// Unrecognized kinds get the practice count.
func (k Kind) TargetCount() int {
	switch k {
	case KindClass:
		return 60
	case KindSubject:
		return 40
	case KindTopic:
		return 30
	case KindSubtopic:
		return 20
	case KindJAMB:
		return 200
	default:
		return 10
	}
}

// ParseKind maps a user-supplied string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown exam kind %q", s)}
}

// User is the explicit per-session user context.
type User struct {
	Username string `validate:"required"`
	Class    string `validate:"required"`
}

// Params describe the exam a session should load.
type Params struct {
	Kind       Kind     `validate:"required,oneof=class subject topic subtopic practice jamb"`
	Class      string   `validate:"required"`
	Subject    string   `validate:"required_if=Kind subject,required_if=Kind topic,required_if=Kind subtopic"`
	Topic      string   `validate:"required_if=Kind topic,required_if=Kind subtopic"`
	Subtopic   string   `validate:"required_if=Kind subtopic"`
	SubtopicID *int64   `validate:"omitnil,gt=0"`
	Subjects   []string `validate:"omitempty,max=4,dive,required"`
}

// Query is what the QuestionSource receives.
type Query struct {
	Kind     Kind
	Class    string
	Subject  string
	Topic    string
	Subtopic string
	Subjects []string
	Limit    int
}

// Query derives the fetch request for these params.
func (p Params) Query() Query {
	return Query{
		Kind:     p.Kind,
		Class:    p.Class,
		Subject:  p.Subject,
		Topic:    p.Topic,
		Subtopic: p.Subtopic,
		Subjects: append([]string(nil), p.Subjects...),
		Limit:    p.Kind.TargetCount(),
	}
}

var validate = validator.New()

// Validate checks the params and converts the first failure into a
// ValidationError.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	if p.Kind == KindJAMB && len(p.Subjects) == 0 {
		return &ValidationError{Field: "subjects", Message: ErrNoSubjects.Error()}
	}
	return nil
}

// Validate checks the user context.
func (u User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required", "required_if":
		msg = "is required"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		msg = fmt.Sprintf("must have at most %s entries", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return &ValidationError{Field: field, Message: msg}
}
