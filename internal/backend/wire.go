package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/studyhall/internal/exam"
)

// questionRecord is one entry of GET /questions. Fields whose wire type
// varies are kept raw and normalized in toQuestion.
type questionRecord struct {
	ID      json.RawMessage `json:"id"`
	Type    string          `json:"type"`
	Content string          `json:"content"`
	Image   *string         `json:"image"`
	Options json.RawMessage `json:"options"`
	Answer  json.RawMessage `json:"answer"`
}

type streakRequest struct {
	Username string `json:"username"`
}

type streakResponse struct {
	Streak int `json:"streak"`
}

type reportRequest struct {
	Username     string  `json:"username"`
	Score        float64 `json:"score"`
	SubtopicID   *int64  `json:"subtopic_id"`
	ExamID       *string `json:"exam_id"`
	TimeTaken    string  `json:"time_taken"`
	Class        string  `json:"class"`
	SubjectCodes string  `json:"subject_codes"`
	ExamTitle    string  `json:"exam_title"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// wireTypes maps every spelling the backend uses to a question type.
var wireTypes = map[string]exam.QuestionType{
	"multiple_choice": exam.TypeMultipleChoice,
	"multiple-choice": exam.TypeMultipleChoice,
	"mcq":             exam.TypeMultipleChoice,
	"true_false":      exam.TypeTrueFalse,
	"true-false":      exam.TypeTrueFalse,
	"boolean":         exam.TypeTrueFalse,
	"theory":          exam.TypeTheory,
	"essay":           exam.TypeTheory,
	"short_answer":    exam.TypeShortAnswer,
	"short-answer":    exam.TypeShortAnswer,
	"fill-in-the-gap": exam.TypeShortAnswer,
	"fill":            exam.TypeShortAnswer,
}

var trueFalseOptions = []string{"True", "False"}

// questionRecordSchema is checked against every record before decoding.
const questionRecordSchema = `{
	"type": "object",
	"properties": {
		"id":      {"type": ["string", "integer"]},
		"type":    {"type": "string", "minLength": 1},
		"content": {"type": "string"},
		"image":   {"type": ["string", "null"]},
		"options": {"type": ["string", "array", "null"], "items": {"type": ["string", "number"]}},
		"answer":  {"type": ["string", "number", "boolean"]}
	},
	"required": ["id", "type", "content", "answer"]
}`

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(questionRecordSchema))
		if err != nil {
			recordSchemaErr = fmt.Errorf("parse record schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://question-record.json", doc); err != nil {
			recordSchemaErr = fmt.Errorf("add record schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = c.Compile("schema://question-record.json")
	})
	return recordSchema, recordSchemaErr
}

// validateRecord checks one raw record against questionRecordSchema.
func validateRecord(raw json.RawMessage) error {
	sch, err := compiledRecordSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return sch.Validate(doc)
}

// toQuestion normalizes a validated record.
func (r questionRecord) toQuestion() (exam.Question, error) {
	id, err := scalarString(r.ID)
	if err != nil {
		return exam.Question{}, fmt.Errorf("id: %w", err)
	}
	qt, ok := wireTypes[strings.ToLower(strings.TrimSpace(r.Type))]
	if !ok {
		return exam.Question{}, fmt.Errorf("unknown question type %q", r.Type)
	}
	answer, err := scalarString(r.Answer)
	if err != nil {
		return exam.Question{}, fmt.Errorf("answer: %w", err)
	}
	options, err := decodeOptions(r.Options)
	if err != nil {
		return exam.Question{}, fmt.Errorf("options: %w", err)
	}
	if qt == exam.TypeTrueFalse && len(options) == 0 {
		options = append([]string(nil), trueFalseOptions...)
	}

	q := exam.Question{
		ID:      id,
		Type:    qt,
		Content: r.Content,
		Options: options,
		Answer:  answer,
	}
	if r.Image != nil {
		q.Image = *r.Image
	}
	return q, nil
}

// scalarString renders a JSON string, number or boolean as text. Numbers keep
// their literal form so "42" and 42 compare equal after decoding.
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("missing value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	switch string(raw) {
	case "true":
		return "True", nil
	case "false":
		return "False", nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// decodeOptions accepts null, a JSON array, or a string holding a JSON
// array (the backend stores options as serialized text).
func decodeOptions(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" || inner == "null" {
			return nil, nil
		}
		raw = json.RawMessage(inner)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode options list: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := scalarString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func toReportRequest(r exam.Report) reportRequest {
	return reportRequest{
		Username:     r.Username,
		Score:        r.Score,
		SubtopicID:   r.SubtopicID,
		ExamID:       r.ExamID,
		TimeTaken:    r.TimeTaken,
		Class:        r.Class,
		SubjectCodes: r.SubjectCodes,
		ExamTitle:    r.ExamTitle,
	}
}
