package chat

import "github.com/abhisek/studychat/internal/tutor"

// fragmentMsg carries one piece of a streamed reply.
type fragmentMsg string

// turnDoneMsg is sent after Submit returns.
type turnDoneMsg struct {
	Result tutor.TurnResult
	Err    error
}
