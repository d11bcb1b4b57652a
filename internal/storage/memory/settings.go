package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// Settings keeps farmer settings in process memory. Nothing survives a restart.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewSettings(seed map[string]string) *Settings {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &Settings{values: values}
}

func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, core.ErrSettingNotFound)
	}
	return v, nil
}

func (s *Settings) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *Settings) List(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *Settings) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
