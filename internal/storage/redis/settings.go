package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
	"github.com/sandevgo/cropadvisor/pkg/retry"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "cropadvisor:settings:".
	Prefix string
}

// Settings keeps farmer settings in Redis so several advisor processes can
// share one farm profile.
type Settings struct {
	rdb    goredis.UniversalClient
	prefix string
}

// Connect dials Redis and pings it with retries.
func Connect(ctx context.Context, opts Options, retrier *retry.Retrier) (*Settings, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	err := retrier.Named("redis ping").Do(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := rdb.Ping(pingCtx).Err()
		if err != nil && isAuthError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.FromCtx(ctx).Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis")
	return New(rdb, opts.Prefix), nil
}

func New(rdb goredis.UniversalClient, prefix string) *Settings {
	return &Settings{rdb: rdb, prefix: prefix}
}

func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("%s: %w", key, core.ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Settings) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes all values in one MULTI/EXEC.
func (s *Settings) SetMany(ctx context.Context, values map[string]string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Settings) List(ctx context.Context) (map[string]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	got, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range got {
		// keys deleted between SCAN and MGET come back nil
		str, ok := v.(string)
		if !ok {
			continue
		}
		values[strings.TrimPrefix(keys[i], s.prefix)] = str
	}
	return values, nil
}

func (s *Settings) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *Settings) Close() error {
	return s.rdb.Close()
}

func isAuthError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS")
}
