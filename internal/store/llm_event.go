package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "session_id", "lesson_id",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, llmRequestEventsTable.Name, llmEventColumns[3:], []any{
		data.Provider, data.Model, data.Purpose, data.SessionID, data.LessonID,
		data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
		data.RequestBody, data.ResponseBody,
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	var out []LLMEventRecord
	err := r.query(ctx, opts.selectEvents(llmRequestEventsTable.Name, llmEventColumns),
		func(row entsql.ColumnScanner) error {
			rec, err := scanLLMEvent(row)
			if err != nil {
				return err
			}
			out = append(out, *rec)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	sel := builder.Select(llmEventColumns...).
		From(entsql.Table(llmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id))

	var rec *LLMEventRecord
	err := r.query(ctx, sel, func(row entsql.ColumnScanner) error {
		var err error
		rec, err = scanLLMEvent(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("LLM event %d not found: %w", id, sql.ErrNoRows)
	}
	return rec, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]UsageSummary, error) {
	return r.llmUsageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]UsageSummary, error) {
	return r.llmUsageBy(ctx, "model")
}

// llmUsageBy groups by a fixed column name; never pass user input.
func (r *eventRepo) llmUsageBy(ctx context.Context, column string) ([]UsageSummary, error) {
	sel := builder.Select(column, entsql.Count("*"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		AppendSelectExpr(
			entsql.Expr("SUM(CASE WHEN success THEN 0 ELSE 1 END)"),
			entsql.Expr("CAST(AVG(latency_ms) AS INTEGER)"),
		).
		From(entsql.Table(llmRequestEventsTable.Name)).
		GroupBy(column).
		OrderBy(column)

	var out []UsageSummary
	err := r.query(ctx, sel, func(row entsql.ColumnScanner) error {
		var u UsageSummary
		if err := row.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.Failures, &u.AvgLatencyMs); err != nil {
			return fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage by %s: %w", column, err)
	}
	return out, nil
}

func scanLLMEvent(row entsql.ColumnScanner) (*LLMEventRecord, error) {
	var rec LLMEventRecord
	err := row.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.Provider, &rec.Model, &rec.Purpose,
		&rec.SessionID, &rec.LessonID, &rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs,
		&rec.Success, &rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &rec, nil
}
