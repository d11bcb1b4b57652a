package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/cropadvisor/internal/config"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

// NewTransport creates the Transport selected by configuration.
func NewTransport(ctx context.Context, cfg core.AppConfig) (core.Transport, error) {
	log.FromCtx(ctx).Info().
		Str("transport", string(cfg.GetStrategy())).
		Msg("starting chat transport")

	switch cfg.GetStrategy() {
	case core.StrategyStreaming:
		sc := config.NewStreamConfig(ctx)
		return NewStream(StreamConfig{
			ChatURL:      sc.GetChatURL(),
			Token:        sc.GetChatToken(),
			Model:        sc.Model,
			StallTimeout: sc.GetStallTimeout(),
		}), nil
	case core.StrategySingleShot:
		gc := config.NewGeminiConfig(ctx)
		return NewGemini(ctx, gc.APIKey, gc.Model)
	default:
		return nil, fmt.Errorf("unknown transport: %s", cfg.GetStrategy())
	}
}
