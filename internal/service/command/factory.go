package command

import (
	"github.com/sandevgo/cropadvisor/internal/core"
)

// NewRouter builds the router shared by the chat front ends.
func NewRouter(sessions SessionResetter, settings core.SettingsProvider) *Router {
	r := New([]core.Command{
		NewResetCommand(sessions),
		NewContextCommand(settings),
		NewCropCommand(settings),
	})
	r.Register(NewHelpCommand(r))
	return r
}
