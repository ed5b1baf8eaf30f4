package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"askweb/internal/logger"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

type Options struct {
	Addr     string
	Password string
}

type Service struct {
	client *redisv8.Client
	log    *logger.Logger
}

func New(opts Options) (*Service, error) {
	c := redisv8.NewClient(&redisv8.Options{Addr: opts.Addr, Password: opts.Password})
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Service{client: c, log: logger.New("Redis")}, nil
}

func (s *Service) Close() error            { return s.client.Close() }
func (s *Service) Client() *redisv8.Client { return s.client }

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.LogErrorf("Redis health check failed: %v", err)
		return fmt.Errorf("redis ping failed: %v", err)
	}
	return nil
}

func (s *Service) AsynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: s.client.Options().Addr, Password: s.client.Options().Password}
}

// Cache helpers
func (s *Service) CacheGet(ctx context.Context, key string, dest interface{}) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (s *Service) CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, time.Duration(ttlSeconds)*time.Second).Err()
}

// Queue helpers back the per-job status channel: one Redis list per job,
// RPUSH on the worker side, LPOP drain on the caller side. FIFO ordering
// comes from the list itself; there is no shared memory between the two.

func (s *Service) QueuePush(ctx context.Context, key string, val interface{}, ttlSeconds int) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, key, b).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second).Err()
}

// QueueDrain pops every element currently in the list without blocking.
// Elements pushed after the drain started are picked up by the next call.
func (s *Service) QueueDrain(ctx context.Context, key string) ([][]byte, error) {
	var out [][]byte
	for {
		b, err := s.client.LPop(ctx, key).Bytes()
		if err == redisv8.Nil {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
}

func (s *Service) QueueDelete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
