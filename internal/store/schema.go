package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableSessionEvents    = "session_events"
	tableAnswerEvents     = "answer_events"
	tablePredictionEvents = "prediction_events"
	tableAPICallEvents    = "api_call_events"
	tableLLMEvents        = "llm_request_events"
)

// textSize is the size ent uses for unbounded text fields.
const textSize = 2147483647

// eventTable declares an event table: an auto-increment id, the global
// sequence and a UTC timestamp in unix milliseconds, followed by cols.
// Every column is NOT NULL with a default so migration can add it to an
// existing table.
func eventTable(name string, cols ...*schema.Column) *schema.Table {
	id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	columns := append([]*schema.Column{
		id,
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
	}, cols...)
	return &schema.Table{
		Name:       name,
		Columns:    columns,
		PrimaryKey: []*schema.Column{id},
	}
}

// withIndex adds a non-unique index named table_column on column.
func withIndex(t *schema.Table, column string) *schema.Table {
	for _, c := range t.Columns {
		if c.Name == column {
			t.Indexes = append(t.Indexes, &schema.Index{
				Name:    t.Name + "_" + column,
				Columns: []*schema.Column{c},
			})
		}
	}
	return t
}

func textCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: textSize, Default: ""}
}

func intCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt64, Default: 0}
}

func boolCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool, Default: false}
}

// tables returns the event schema. Each call builds fresh values since the
// migrator annotates the tables it is given.
func tables() []*schema.Table {
	return []*schema.Table{
		withIndex(eventTable(tableSessionEvents,
			textCol("session_id"),
			textCol("action"),
			textCol("api_url"),
			intCol("questions_served"),
			intCol("correct_answers"),
			intCol("duration_secs"),
		), "session_id"),
		withIndex(eventTable(tableAnswerEvents,
			textCol("session_id"),
			textCol("question_id"),
			textCol("question_text"),
			textCol("skill"),
			textCol("chosen_answer"),
			textCol("correct_answer"),
			boolCol("correct"),
			intCol("latency_ms"),
		), "session_id"),
		withIndex(eventTable(tablePredictionEvents,
			textCol("session_id"),
			textCol("source"),
			textCol("predictions"),
		), "session_id"),
		withIndex(eventTable(tableAPICallEvents,
			textCol("operation"),
			textCol("target"),
			intCol("latency_ms"),
			boolCol("success"),
			intCol("status_code"),
			textCol("error_message"),
		), "operation"),
		eventTable(tableLLMEvents,
			textCol("provider"),
			textCol("model"),
			textCol("purpose"),
			intCol("input_tokens"),
			intCol("output_tokens"),
			intCol("latency_ms"),
			boolCol("success"),
			textCol("error_message"),
			textCol("request_body"),
			textCol("response_body"),
		),
	}
}

// migrate creates missing tables and adds missing columns and indexes.
// Columns and indexes absent from the schema are left in place.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv,
		schema.WithDropColumn(false),
		schema.WithDropIndex(false),
		schema.WithForeignKeys(false),
	)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables()...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
