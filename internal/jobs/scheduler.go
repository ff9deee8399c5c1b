package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"contenthub/internal/queue"
)

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler enqueues the periodic purge sweep. Specs use the six-field cron
// format with seconds.
type Scheduler struct {
	cron      *cron.Cron
	queue     TaskQueue
	sweepSpec string
	log       zerolog.Logger
}

func NewScheduler(queue TaskQueue, sweepSpec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		queue:     queue,
		sweepSpec: sweepSpec,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.sweepSpec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.sweepSpec, s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) enqueueSweep() {
	if err := s.queue.Enqueue(context.Background(), queue.Task{Type: queue.TaskSweep}); err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
		return
	}
	s.log.Info().Msg("purge sweep enqueued")
}
