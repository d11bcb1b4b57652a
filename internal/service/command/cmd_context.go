package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/farm"
)

type ContextCommand struct {
	settings  core.SettingsProvider
	formatter *ResponseFormatter
}

func NewContextCommand(settings core.SettingsProvider) core.Command {
	return &ContextCommand{
		settings:  settings,
		formatter: NewResponseFormatter(),
	}
}

func (c *ContextCommand) Name() string {
	return "context"
}

func (c *ContextCommand) Description() string {
	return "Show the farm data the advisor answers from"
}

func (c *ContextCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	s := farm.Build(ctx, c.settings)

	readings := make([]string, len(s.Readings))
	for i, r := range s.Readings {
		readings[i] = fmt.Sprintf("%s: %s [%s] (optimal %s)", r.Name, r.Quantity(), r.Status(), r.Optimal())
	}

	return c.formatter.Combine(
		c.formatter.Info("Farm Context"),
		c.formatter.Label("Farmer", s.FarmerName)+
			c.formatter.Label("Location", s.Location)+
			c.formatter.Label("Soil", s.SoilType)+
			c.formatter.Label("Crops", s.CropList()),
		c.formatter.Section("📡", "Sensor Readings", c.formatter.List(readings)),
		c.formatter.Label("Health Score", fmt.Sprintf("%d/100 (%s)", s.HealthScore, s.HealthLabel()))+
			c.formatter.Label("Alerts", s.AlertList())+
			c.formatter.Label("Last Soil Report", s.LastSoilReport),
	), nil
}
