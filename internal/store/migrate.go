package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const textSize = 2147483647

var (
	studentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "school_level", Type: field.TypeString, Size: 16, Default: "elementary"},
		{Name: "grade", Type: field.TypeInt, Default: 3},
		{Name: "recent_accuracy", Type: field.TypeFloat64, Default: 0.7},
		{Name: "difficulty_level", Type: field.TypeInt, Default: 2},
		{Name: "weak_topics", Type: field.TypeString, Size: textSize, Default: "[]"},
		{Name: "current_topics", Type: field.TypeString, Size: textSize, Default: "[]"},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	studentsTable = &schema.Table{
		Name:       "students",
		Columns:    studentsColumns,
		PrimaryKey: []*schema.Column{studentsColumns[0]},
	}

	chaptersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "school_level", Type: field.TypeString, Size: 16},
		{Name: "grade", Type: field.TypeInt},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "position", Type: field.TypeInt, Default: 0},
	}
	chaptersTable = &schema.Table{
		Name:       "chapters",
		Columns:    chaptersColumns,
		PrimaryKey: []*schema.Column{chaptersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "chapter_level_grade_name", Unique: true, Columns: []*schema.Column{chaptersColumns[1], chaptersColumns[2], chaptersColumns[3]}},
		},
	}

	unitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chapter_id", Type: field.TypeInt},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "position", Type: field.TypeInt, Default: 0},
	}
	unitsTable = &schema.Table{
		Name:       "units",
		Columns:    unitsColumns,
		PrimaryKey: []*schema.Column{unitsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "units_chapters_units",
				Columns:    []*schema.Column{unitsColumns[1]},
				RefColumns: []*schema.Column{chaptersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "unit_chapter_name", Unique: true, Columns: []*schema.Column{unitsColumns[1], unitsColumns[2]}},
		},
	}

	problemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "unit_id", Type: field.TypeInt, Nullable: true},
		{Name: "topic", Type: field.TypeString, Size: 255},
		{Name: "tier", Type: field.TypeInt},
		{Name: "category", Type: field.TypeString, Size: 16},
		{Name: "question", Type: field.TypeString, Size: textSize},
		{Name: "options", Type: field.TypeString, Size: textSize},
		{Name: "answer", Type: field.TypeString, Size: textSize},
		{Name: "explanation", Type: field.TypeString, Size: textSize},
		{Name: "diagram", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	problemsTable = &schema.Table{
		Name:       "problems",
		Columns:    problemsColumns,
		PrimaryKey: []*schema.Column{problemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "problem_student_created", Columns: []*schema.Column{problemsColumns[1], problemsColumns[11]}},
		},
	}

	weaknessColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "problem_id", Type: field.TypeString, Size: 64},
		{Name: "topic", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "submitted_answer", Type: field.TypeString, Size: textSize},
		{Name: "error_kind", Type: field.TypeString, Size: 32},
		{Name: "reasoning", Type: field.TypeString, Size: textSize},
		{Name: "advice", Type: field.TypeString, Size: textSize},
		{Name: "severity", Type: field.TypeInt, Default: 3},
		{Name: "created_at", Type: field.TypeInt64},
	}
	weaknessTable = &schema.Table{
		Name:       "weakness_records",
		Columns:    weaknessColumns,
		PrimaryKey: []*schema.Column{weaknessColumns[0]},
		Indexes: []*schema.Index{
			{Name: "weakness_student_topic", Columns: []*schema.Column{weaknessColumns[1], weaknessColumns[3]}},
		},
	}

	submissionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "accuracy", Type: field.TypeFloat64},
		{Name: "unit_id", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeInt64},
	}
	submissionsTable = &schema.Table{
		Name:       "submissions",
		Columns:    submissionsColumns,
		PrimaryKey: []*schema.Column{submissionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "submission_student_created", Columns: []*schema.Column{submissionsColumns[1], submissionsColumns[4]}},
		},
	}

	masteryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "student_id", Type: field.TypeString, Size: 64},
		{Name: "unit_id", Type: field.TypeInt},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	masteryTable = &schema.Table{
		Name:       "unit_mastery",
		Columns:    masteryColumns,
		PrimaryKey: []*schema.Column{masteryColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "unit_mastery_units_mastery",
				Columns:    []*schema.Column{masteryColumns[2]},
				RefColumns: []*schema.Column{unitsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "mastery_student_unit", Unique: true, Columns: []*schema.Column{masteryColumns[1], masteryColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString, Size: 32},
		{Name: "model", Type: field.TypeString, Size: 128},
		{Name: "purpose", Type: field.TypeString, Size: 32},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_event_timestamp", Columns: []*schema.Column{llmEventsColumns[1]}},
			{Name: "llm_event_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
		},
	}

	tables = []*schema.Table{
		studentsTable,
		chaptersTable,
		unitsTable,
		problemsTable,
		weaknessTable,
		submissionsTable,
		masteryTable,
		llmEventsTable,
	}
)

func init() {
	unitsTable.ForeignKeys[0].RefTable = chaptersTable
	masteryTable.ForeignKeys[0].RefTable = unitsTable
}

// migrate creates missing tables, columns and indexes. Existing data is
// never dropped.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
