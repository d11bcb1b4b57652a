package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

// StreamConfig points the streaming transport at an OpenAI-style chat proxy.
type StreamConfig struct {
	ChatURL      string        `env:"ADVISOR_CHAT_URL,required,notEmpty"`
	Token        string        `env:"ADVISOR_CHAT_TOKEN"`
	Model        string        `env:"ADVISOR_CHAT_MODEL"`
	StallTimeout time.Duration `env:"ADVISOR_STREAM_STALL_TIMEOUT" envDefault:"30s"`
}

func LoadStreamConfig() (*StreamConfig, error) {
	c := &StreamConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewStreamConfig(ctx context.Context) *StreamConfig {
	c, err := LoadStreamConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Stream config")
	}
	return c
}

func (c StreamConfig) GetChatURL() string {
	return c.ChatURL
}

func (c StreamConfig) GetChatToken() string {
	return c.Token
}

func (c StreamConfig) GetStallTimeout() time.Duration {
	return c.StallTimeout
}
