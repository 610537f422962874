package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Event tables share the sequence and timestamp columns: the global
// sequence orders events across tables, the timestamp is UTC wall-clock.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, extra...)
}

var (
	llmRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "session_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "lesson_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_lesson_id", Columns: []*schema.Column{llmRequestEventsColumns[7]}},
		},
	}

	lessonEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "lesson_id", Type: field.TypeString},
		&schema.Column{Name: "kind", Type: field.TypeEnum, Enums: []string{
			string(LessonStarted), string(LessonCaptured), string(LessonAdvanced),
			string(LessonCompleted), string(LessonExportFailed),
		}},
		&schema.Column{Name: "step_index", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "revised", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "detail", Type: field.TypeString, Default: ""},
	)
	lessonEventsTable = &schema.Table{
		Name:       "lesson_events",
		Columns:    lessonEventsColumns,
		PrimaryKey: []*schema.Column{lessonEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "lessonevent_timestamp", Columns: []*schema.Column{lessonEventsColumns[2]}},
			{Name: "lessonevent_session_id", Columns: []*schema.Column{lessonEventsColumns[3]}},
		},
	}

	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	// tables is everything the auto-migration creates.
	tables = []*schema.Table{
		llmRequestEventsTable,
		lessonEventsTable,
		globalSequenceTable,
	}
)
