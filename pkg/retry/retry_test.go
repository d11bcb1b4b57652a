package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:    retries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestRetrier_Do(t *testing.T) {
	temporary := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		retries   int
		wantCalls int
		wantErr   error
	}{
		{name: "first try", failures: 0, retries: 3, wantCalls: 1},
		{name: "after two failures", failures: 2, retries: 3, wantCalls: 3},
		{name: "exhausted", failures: 10, retries: 2, wantCalls: 3, wantErr: temporary},
		{name: "no retries", failures: 10, retries: 0, wantCalls: 1, wantErr: temporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := NewRetrier(fastConfig(tt.retries)).Do(context.Background(), func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return temporary
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetrier_Permanent(t *testing.T) {
	authErr := errors.New("WRONGPASS invalid password")
	calls := 0

	err := NewRetrier(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("ping: %w", Permanent(authErr))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestRetrier_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second

	err := NewRetrier(cfg).Named("test").Do(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrier_Backoff(t *testing.T) {
	cfg := &Config{
		MaxRetries:    3,
		BackoffFactor: 2,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      30 * time.Millisecond,
	}

	start := time.Now()
	_ = NewRetrier(cfg).Do(context.Background(), func(ctx context.Context) error {
		return errors.New("down")
	})
	elapsed := time.Since(start)

	// 20ms, then 40ms capped to 30ms twice
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}
