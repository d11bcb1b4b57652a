package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/cropadvisor/internal/core"
)

type HelpCommand struct {
	router    core.CmdRouter
	formatter *ResponseFormatter
}

func NewHelpCommand(router core.CmdRouter) core.Command {
	return &HelpCommand{
		router:    router,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	cmds := c.router.ListCommands()
	items := make([]string, len(cmds))
	for i, cmd := range cmds {
		items[i] = fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description())
	}

	return c.formatter.Combine(
		c.formatter.Info(core.AdvisorName),
		"Ask about irrigation, fertilizer, pests or your soil readings. Send a photo of a sick plant for a diagnosis.\n",
		c.formatter.List(items),
	), nil
}
