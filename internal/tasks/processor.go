package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"contenthub/internal/models"
	"contenthub/internal/queue"
)

const sweepBatchSize = 100

type ContentStore interface {
	ListPendingPurge(ctx context.Context, limit int) ([]models.Content, error)
	MarkPurged(ctx context.Context, id string) error
}

type ObjectRemover interface {
	Remove(ctx context.Context, bucket string, key string) error
}

// Processor handles the content task stream: purge removes one soft-deleted
// object from storage, sweep purges everything left behind.
type Processor struct {
	contents ContentStore
	objects  ObjectRemover
	logger   zerolog.Logger
}

func NewProcessor(contents ContentStore, objects ObjectRemover, logger zerolog.Logger) *Processor {
	return &Processor{
		contents: contents,
		objects:  objects,
		logger:   logger,
	}
}

// Handle runs one stream entry. Entries that cannot be decoded are logged
// and reported as handled so they are acked instead of reclaimed forever.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	task, err := queue.DecodeTask(msg.Values)
	if err != nil {
		p.logger.Error().Err(err).Str("message_id", msg.ID).Interface("values", msg.Values).Msg("dropping undecodable task")
		return nil
	}

	switch task.Type {
	case queue.TaskPurge:
		return p.handlePurge(ctx, task)
	case queue.TaskSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handlePurge(ctx context.Context, task queue.Task) error {
	if task.ContentID == "" || task.Object == "" {
		p.logger.Warn().Str("message_type", string(task.Type)).Msg("purge task missing content or object")
		return nil
	}
	return p.purge(ctx, task.ContentID, task.Bucket, task.Object)
}

func (p *Processor) handleSweep(ctx context.Context) error {
	pending, err := p.contents.ListPendingPurge(ctx, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list pending purge: %w", err)
	}

	failed := 0
	for _, content := range pending {
		if err := p.purge(ctx, content.ID, content.Bucket, content.ObjectKey); err != nil {
			failed++
			p.logger.Error().Err(err).Str("content_id", content.ID).Msg("sweep purge failed")
		}
	}

	p.logger.Info().Int("pending", len(pending)).Int("failed", failed).Msg("sweep finished")
	if failed > 0 {
		return fmt.Errorf("sweep: %d of %d purges failed", failed, len(pending))
	}
	return nil
}

func (p *Processor) purge(ctx context.Context, contentID, bucket, object string) error {
	if err := p.objects.Remove(ctx, bucket, object); err != nil {
		return err
	}
	if err := p.contents.MarkPurged(ctx, contentID); err != nil {
		return fmt.Errorf("mark purged: %w", err)
	}
	p.logger.Info().Str("content_id", contentID).Str("object", object).Msg("content purged")
	return nil
}
