package tutor

import (
	"context"
	"log/slog"

	"github.com/abhisek/studychat/internal/catalog"
	"github.com/abhisek/studychat/internal/export"
	"github.com/abhisek/studychat/internal/llm"
	"github.com/abhisek/studychat/internal/store"
)

// Handler names the handler that ran for a turn.
type Handler string

const (
	HandlerCoach    Handler = "coach"
	HandlerChat     Handler = "chat"
	HandlerComplete Handler = "complete"
	HandlerRefused  Handler = "refused"
)

// TurnResult summarises one turn.
type TurnResult struct {
	Handler Handler `json:"handler"`
	// Reply is the assistant message appended this turn, if any.
	Reply string `json:"reply,omitempty"`
	// LessonStarted is the lesson id the router switched to, if any.
	LessonStarted string `json:"lesson_started,omitempty"`

	Captured  bool `json:"captured,omitempty"`
	Advanced  bool `json:"advanced,omitempty"`
	Revised   bool `json:"revised,omitempty"`
	StepIndex int  `json:"step_index"`
	Completed bool `json:"completed,omitempty"`

	ArtifactPath string `json:"artifact_path,omitempty"`
	ExportErr    error  `json:"-"`
}

// Options configures an Orchestrator.
type Options struct {
	Provider llm.Provider
	Loader   catalog.Loader
	Exporter export.Exporter
	Events   store.EventRepo
	Logger   *slog.Logger
	Config   Config
}

// Orchestrator runs one turn: route, then exactly one handler.
type Orchestrator struct {
	router    *Router
	coach     *Coach
	chat      *Chat
	completer *Completer
	events    store.EventRepo
	logger    *slog.Logger
}

// NewOrchestrator wires the handlers from opts.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	events := opts.Events
	if events == nil {
		events = store.NopEventRepo{}
	}
	return &Orchestrator{
		router:    NewRouter(opts.Loader),
		coach:     NewCoach(opts.Provider, opts.Config),
		chat:      NewChat(opts.Provider, opts.Config),
		completer: NewCompleter(opts.Exporter, opts.Config.ArtifactLessonID, logger),
		events:    events,
		logger:    logger,
	}
}

// Turn processes the latest message in state. Fragments of a streamed reply
// are passed to sink (which may be nil) as they arrive. Completion errors
// end the turn and are returned.
func (o *Orchestrator) Turn(ctx context.Context, state *ConversationState, sink func(string)) (TurnResult, error) {
	state.Lesson.ensureMaps()

	var res TurnResult
	if id := o.router.Route(state); id != "" {
		res.LessonStarted = id
		o.record(ctx, state, store.LessonEventData{LessonID: id, Kind: store.LessonStarted, Detail: "router"})
	}

	switch {
	case state.Lesson.Coaching():
		res.Handler = HandlerCoach
		lessonID := state.Lesson.LessonID
		step := o.coach.CoachStep
		if res.LessonStarted != "" {
			step = o.coach.Open
		}
		out, err := step(ctx, state, sink)
		if err != nil {
			return res, err
		}
		res.Reply = out.Reply
		res.Captured, res.Advanced, res.Revised = out.Captured, out.Advanced, out.Revised
		res.Completed = out.Completed
		switch {
		case out.Captured:
			o.record(ctx, state, store.LessonEventData{LessonID: lessonID, Kind: store.LessonCaptured, StepIndex: out.Step})
		case out.Advanced:
			o.record(ctx, state, store.LessonEventData{LessonID: lessonID, Kind: store.LessonAdvanced, StepIndex: out.Step, Revised: out.Revised})
		}

	case state.Lesson.Completed:
		res.Handler = HandlerComplete
		out := o.completer.Complete(ctx, state)
		res.Reply = out.Message
		res.ArtifactPath = out.ArtifactPath
		res.ExportErr = out.ExportErr
		if out.ExportErr != nil {
			o.record(ctx, state, store.LessonEventData{LessonID: out.LessonID, Kind: store.LessonExportFailed, Detail: out.ExportErr.Error()})
		}
		o.record(ctx, state, store.LessonEventData{LessonID: out.LessonID, Kind: store.LessonCompleted, Detail: out.ArtifactPath})

	default:
		res.Handler = HandlerChat
		reply, err := o.chat.Respond(ctx, state, sink)
		if err != nil {
			return res, err
		}
		res.Reply = reply
	}

	res.StepIndex = state.Lesson.CurrentStep
	if sink != nil && res.Handler == HandlerComplete {
		sink(res.Reply)
	}
	return res, nil
}

// EnsureCatalog loads the catalog into state if it is still empty.
func (o *Orchestrator) EnsureCatalog(state *ConversationState) {
	o.router.ensureCatalog(state)
}

func (o *Orchestrator) record(ctx context.Context, state *ConversationState, data store.LessonEventData) {
	data.SessionID = state.SessionID
	if err := o.events.AppendLessonEvent(context.WithoutCancel(ctx), data); err != nil {
		o.logger.Warn("failed to log lesson event", "kind", data.Kind, "error", err)
	}
}
