package tutor

import (
	"context"
	"log/slog"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/export"
)

// CompletionOutcome describes what the completion handler did.
type CompletionOutcome struct {
	LessonID     string
	Message      string
	ArtifactPath string
	ExportErr    error
}

// Completer closes out a finished lesson.
type Completer struct {
	exporter         export.Exporter
	artifactLessonID string
	logger           *slog.Logger
}

// NewCompleter creates a completion handler. Only the lesson named
// artifactLessonID is exported, and only when exporter is non-nil.
func NewCompleter(exporter export.Exporter, artifactLessonID string, logger *slog.Logger) *Completer {
	return &Completer{exporter: exporter, artifactLessonID: artifactLessonID, logger: logger}
}

// Complete assembles the step records, exports the artifact lesson and
// appends a confirmation. The lesson state is always reset, including when
// the export fails.
func (c *Completer) Complete(ctx context.Context, state *ConversationState) CompletionOutcome {
	ls := state.Lesson
	lesson := state.activeLesson()
	title := ls.LessonID
	if lesson != nil {
		title = lesson.DisplayTitle()
	}

	out := CompletionOutcome{LessonID: ls.LessonID, Message: genericCompletionMessage}
	if ls.LessonID != "" && ls.LessonID == c.artifactLessonID && c.exporter != nil {
		path, err := c.exporter.Export(ctx, export.Deck{
			LessonID: ls.LessonID,
			Title:    title,
			Records:  buildRecords(lesson, ls.UserEntries),
		})
		if err != nil {
			c.logger.Warn("lesson export failed", "lesson", ls.LessonID, "session", state.SessionID, "error", err)
			out.ExportErr = err
			out.Message = exportFailedMessage(title)
		} else {
			out.ArtifactPath = path
			out.Message = artifactMessage(title, path)
		}
	}

	state.appendAssistant(out.Message)
	state.Lesson = NewLessonState()
	return out
}

// buildRecords pairs every step with the user's recorded entry, in order.
func buildRecords(lesson *catalog.Lesson, entries map[int]string) []export.StepRecord {
	if lesson == nil {
		return nil
	}
	records := make([]export.StepRecord, len(lesson.Steps))
	for i, step := range lesson.Steps {
		records[i] = export.StepRecord{
			Step:          stepName(step, i),
			UserInput:     entries[i],
			Goals:         step.Goals,
			BestPractices: step.BestPractices,
		}
	}
	return records
}
