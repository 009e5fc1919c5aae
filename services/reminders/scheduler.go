package reminders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kapostolos1/estia-app/pkg/task"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// scanInterval must stay below the width of the reminder window or a scan
// could miss it entirely.
const scanInterval = time.Hour

// Scheduler enqueues a reminder run every hour. The unique option keeps
// multiple scheduler replicas from stacking duplicate runs.
type Scheduler struct {
	enq    task.Enqueuer
	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

func NewScheduler(enq task.Enqueuer) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{enq: enq, ctx: ctx, cancel: cancel}
}

func (s *Scheduler) Start() {
	s.done.Add(1)
	go s.run()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.done.Wait()
}

func (s *Scheduler) run() {
	defer s.done.Done()

	t := time.NewTicker(scanInterval)
	defer t.Stop()

	s.enqueue()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.enqueue()
		}
	}
}

func (s *Scheduler) enqueue() {
	_, err := s.enq.Enqueue(s.ctx, NewRunTask(),
		asynq.Queue("low"),
		asynq.Unique(scanInterval/2),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return
		}
		zap.L().Error("failed to enqueue renewal reminder run", zap.Error(err))
	}
}
