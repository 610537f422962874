package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var lessonEventColumns = []string{
	"id", "sequence", "timestamp", "session_id", "lesson_id", "kind", "step_index", "revised", "detail",
}

func (r *eventRepo) AppendLessonEvent(ctx context.Context, data LessonEventData) error {
	err := r.insert(ctx, lessonEventsTable.Name,
		[]string{"session_id", "lesson_id", "kind", "step_index", "revised", "detail"},
		[]any{data.SessionID, data.LessonID, string(data.Kind), data.StepIndex, data.Revised, data.Detail},
	)
	if err != nil {
		return fmt.Errorf("save lesson event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLessonEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]LessonEventRecord, error) {
	var preds []*entsql.Predicate
	if sessionID != "" {
		preds = append(preds, entsql.EQ("session_id", sessionID))
	}

	var out []LessonEventRecord
	err := r.query(ctx, opts.selectEvents(lessonEventsTable.Name, lessonEventColumns, preds...),
		func(row entsql.ColumnScanner) error {
			var (
				rec  LessonEventRecord
				kind string
			)
			if err := row.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.LessonID,
				&kind, &rec.StepIndex, &rec.Revised, &rec.Detail); err != nil {
				return fmt.Errorf("scan lesson event: %w", err)
			}
			rec.Kind = LessonEventKind(kind)
			out = append(out, rec)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query lesson events: %w", err)
	}
	return out, nil
}
