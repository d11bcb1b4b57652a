package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/farm"
)

// CropCommand shows the catalogue sheet of one crop, or the calendar of the
// selected crops when no name is given.
type CropCommand struct {
	settings  core.SettingsProvider
	formatter *ResponseFormatter
}

func NewCropCommand(settings core.SettingsProvider) core.Command {
	return &CropCommand{
		settings:  settings,
		formatter: NewResponseFormatter(),
	}
}

func (c *CropCommand) Name() string {
	return "crop"
}

func (c *CropCommand) Description() string {
	return "Show sowing, harvest and fertilizer details for a crop"
}

func (c *CropCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		calendar := farm.Build(ctx, c.settings).CropCalendar()
		if len(calendar) == 0 {
			return c.formatter.Combine(
				c.formatter.Info("Crop Calendar"),
				c.formatter.Tip("No catalogued crop is selected. Try /crop "+c.names()),
			), nil
		}
		lines := make([]string, len(calendar))
		for i, crop := range calendar {
			lines[i] = crop.Summary()
		}
		return c.formatter.Combine(c.formatter.Info("Crop Calendar"), c.formatter.List(lines)), nil
	}

	name := strings.Join(args, " ")
	crop, ok := farm.LookupCrop(name)
	if !ok {
		return "", fmt.Errorf("unknown crop %q, known crops: %s", name, c.names())
	}

	return c.formatter.Combine(
		c.formatter.Info(crop.Name),
		c.formatter.Label("Sowing", crop.Sowing)+
			c.formatter.Label("Harvest", crop.Harvest)+
			c.formatter.Label("Fertilizer", crop.Fertilizer)+
			c.formatter.Label("Risk", string(crop.Risk))+
			c.formatter.Label("Expected Yield", crop.ExpectedYield)+
			c.formatter.Label("Market Price", fmt.Sprintf("Rs %d/quintal", crop.MarketPrice)),
	), nil
}

func (c *CropCommand) names() string {
	crops := farm.Crops()
	names := make([]string, len(crops))
	for i, crop := range crops {
		names[i] = strings.ToLower(crop.Name)
	}
	return strings.Join(names, ", ")
}
