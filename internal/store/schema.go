package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

func idColumn() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
}

func sequenceColumn() *schema.Column {
	return &schema.Column{Name: "sequence", Type: field.TypeInt64, Unique: true}
}

var (
	examEventColumns = []*schema.Column{
		idColumn(),
		sequenceColumn(),
		{Name: "session_id", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "username", Type: field.TypeString, Default: ""},
		{Name: "payload", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// ExamEventsTable stores every published exam event.
	ExamEventsTable = &schema.Table{
		Name:       "exam_events",
		Columns:    examEventColumns,
		PrimaryKey: []*schema.Column{examEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "examevent_session_id", Columns: []*schema.Column{examEventColumns[2]}},
		},
	}

	attemptColumns = []*schema.Column{
		idColumn(),
		sequenceColumn(),
		{Name: "session_id", Type: field.TypeString, Unique: true},
		{Name: "username", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "class", Type: field.TypeString, Default: ""},
		{Name: "subject_codes", Type: field.TypeString, Default: ""},
		{Name: "exam_id", Type: field.TypeString, Default: ""},
		{Name: "total", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeInt},
		{Name: "percentage", Type: field.TypeFloat64},
		{Name: "passed", Type: field.TypeBool},
		{Name: "time_taken", Type: field.TypeString},
		{Name: "elapsed_seconds", Type: field.TypeInt},
		{Name: "completed_at", Type: field.TypeInt64},
	}
	// AttemptsTable stores one row per completed exam.
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    attemptColumns,
		PrimaryKey: []*schema.Column{attemptColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_completed_at", Columns: []*schema.Column{attemptColumns[15]}},
		},
	}

	llmRequestColumns = []*schema.Column{
		idColumn(),
		sequenceColumn(),
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// LLMRequestsTable stores one row per LLM API call.
	LLMRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
	}

	// Tables lists every journal table, in migration order.
	Tables = []*schema.Table{ExamEventsTable, AttemptsTable, LLMRequestsTable}
)
