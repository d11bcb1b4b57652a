package command

import (
	"context"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// SessionResetter forgets the conversation of one session.
type SessionResetter interface {
	Reset(sessionID string) bool
}

type ResetCommand struct {
	sessions  SessionResetter
	formatter *ResponseFormatter
}

func NewResetCommand(sessions SessionResetter) core.Command {
	return &ResetCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Start a new conversation"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.sessions.Reset(sessionID)
	return c.formatter.Success("Conversation cleared. Ask me anything about your farm."), nil
}
