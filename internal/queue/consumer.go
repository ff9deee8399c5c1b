package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"contenthub/internal/config"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg redis.XMessage) error
}

// Consumer reads the task stream through a consumer group. A message is
// acknowledged only after its handler returns nil; anything else stays in
// the pending list until the reclaim loop picks it up again.
type Consumer struct {
	client  *redis.Client
	cfg     config.QueueConfig
	handler MessageHandler
	logger  zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg config.QueueConfig, handler MessageHandler, logger zerolog.Logger) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	return &Consumer{
		client:  client,
		cfg:     cfg,
		handler: handler,
		logger: logger.With().
			Str("stream", cfg.Stream).
			Str("group", cfg.Group).
			Str("consumer", cfg.Consumer).
			Logger(),
	}
}

// EnsureGroup creates the consumer group, and the stream with it, when absent.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	if c.cfg.Stream == "" {
		return ErrEmptyStream
	}
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start runs the read loop and the reclaim loop until ctx is cancelled or
// either loop fails.
func (c *Consumer) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error { return c.reclaimLoop(ctx) })
	return g.Wait()
}

func (c *Consumer) readLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    c.cfg.BatchSize,
			Block:    c.cfg.Block,
		}).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("stream read failed")
			if !sleep(ctx, 2*time.Second) {
				return ctx.Err()
			}
			continue
		}

		for _, stream := range streams {
			c.dispatch(ctx, stream.Messages, false)
		}
	}
}

func (c *Consumer) reclaimLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.ClaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.reclaim(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("reclaim failed")
			}
		}
	}
}

// reclaim takes over messages idle for longer than the claim interval,
// walking the pending list until the cursor wraps back to the start.
func (c *Consumer) reclaim(ctx context.Context) error {
	cursor := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.cfg.Stream,
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			MinIdle:  c.cfg.ClaimInterval,
			Start:    cursor,
			Count:    c.cfg.BatchSize,
		}).Result()
		if err != nil {
			return err
		}
		c.dispatch(ctx, msgs, true)
		if next == "0-0" || next == "" {
			return nil
		}
		cursor = next
	}
}

func (c *Consumer) dispatch(ctx context.Context, msgs []redis.XMessage, reclaimed bool) {
	for _, msg := range msgs {
		log := c.logger.With().Str("message_id", msg.ID).Bool("reclaimed", reclaimed).Logger()
		if err := c.handler.Handle(ctx, msg); err != nil {
			log.Error().Err(err).Msg("task failed, left pending")
			continue
		}
		if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
			log.Error().Err(err).Msg("ack failed")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
