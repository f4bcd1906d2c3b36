package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/phoneAuth/counter"
	"github.com/MrEthical07/phoneAuth/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// counterBackend is the counter store chosen for a run plus its lifecycle.
type counterBackend struct {
	store  counter.Store
	memory *counter.MemoryStore
	ping   func(ctx context.Context) error
	close  func()
}

// openRedis connects to addr, or to an in-process miniredis when addr is
// empty and dev is allowed.
func openRedis(ctx context.Context, cfg *config.Config, allowDev bool, logger logrus.FieldLogger) (redis.UniversalClient, func(), error) {
	addr := cfg.RedisAddr
	var mr *miniredis.Miniredis
	if addr == "" {
		if !allowDev {
			return nil, nil, errors.New("REDIS_ADDR is required")
		}
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		addr = mr.Addr()
		logger.WithField("addr", addr).Warn("using in-process miniredis; counters are lost on exit")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{addr},
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		MaxRetries:   1,
	})
	cleanup := func() {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, cleanup, nil
}

func openCounterBackend(ctx context.Context, kind string, cfg *config.Config, logger logrus.FieldLogger) (*counterBackend, error) {
	switch kind {
	case "memory":
		if cfg.Production() {
			return nil, errors.New("memory counter store is not allowed in production")
		}
		mem := counter.NewMemoryStore(time.Now)
		logger.Warn("using in-memory counter store; run a single instance only")
		return &counterBackend{
			store:  mem,
			memory: mem,
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	case "redis", "":
		client, cleanup, err := openRedis(ctx, cfg, !cfg.Production(), logger)
		if err != nil {
			return nil, err
		}
		rs := counter.NewRedisStore(client, "")
		return &counterBackend{
			store: rs,
			ping:  rs.Ping,
			close: cleanup,
		}, nil
	default:
		return nil, fmt.Errorf("unknown counter store %q (want redis or memory)", kind)
	}
}
