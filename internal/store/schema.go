package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{LLMRequestEventsColumns[4]}},
		},
	}

	// QuestionPoolsColumns holds the columns for the "question_pools" table.
	QuestionPoolsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "batch_id", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
		{Name: "content_hash", Type: field.TypeString, Default: ""},
		{Name: "format", Type: field.TypeString},
		{Name: "count", Type: field.TypeInt},
		{Name: "attempts", Type: field.TypeInt},
		{Name: "complete", Type: field.TypeBool},
		{Name: "malformed", Type: field.TypeInt, Default: 0},
		{Name: "dropped", Type: field.TypeInt, Default: 0},
		{Name: "questions", Type: field.TypeString, Size: 2147483647},
	}
	// QuestionPoolsTable holds the schema information for the "question_pools" table.
	QuestionPoolsTable = &schema.Table{
		Name:       "question_pools",
		Columns:    QuestionPoolsColumns,
		PrimaryKey: []*schema.Column{QuestionPoolsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "questionpool_source", Columns: []*schema.Column{QuestionPoolsColumns[4]}},
			{Name: "questionpool_batch_id", Columns: []*schema.Column{QuestionPoolsColumns[3]}},
			{Name: "questionpool_content_hash", Columns: []*schema.Column{QuestionPoolsColumns[5]}},
		},
	}

	// ExamsColumns holds the columns for the "exams" table.
	ExamsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "exam_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "total", Type: field.TypeInt},
		{Name: "allocation", Type: field.TypeString, Size: 2147483647},
		{Name: "questions", Type: field.TypeString, Size: 2147483647},
	}
	// ExamsTable holds the schema information for the "exams" table.
	ExamsTable = &schema.Table{
		Name:       "exams",
		Columns:    ExamsColumns,
		PrimaryKey: []*schema.Column{ExamsColumns[0]},
	}

	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
		{Name: "subjects", Type: field.TypeString, Size: 2147483647},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		QuestionPoolsTable,
		ExamsTable,
		SessionsTable,
	}
)
