package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amarfts/ph-scheduler/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues generation runs.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates the asynq client from the Redis URL.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueGeneration queues a generation run. A zero runAt enqueues it for
// immediate processing; otherwise the run starts at runAt.
func (c *Client) EnqueueGeneration(ctx context.Context, payload GeneratePostsPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("scheduler client not configured")
	}

	task, err := NewGeneratePostsTask(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.Queue(c.queue)}
	if !runAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(runAt))
	}

	_, err = c.client.EnqueueContext(ctx, task, opts...)
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
