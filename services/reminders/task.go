package reminders

import (
	"context"
	"time"

	"github.com/kapostolos1/estia-app/pkg/taskname"

	"github.com/hibiken/asynq"
)

// RenewalTask is the asynq handler behind the scheduled reminder run.
type RenewalTask struct {
	svc *Service
}

func NewRenewalTask(svc *Service) *RenewalTask {
	return &RenewalTask{svc: svc}
}

func (t *RenewalTask) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(taskname.RenewalReminderRun, t.Handle)
}

func (t *RenewalTask) Handle(ctx context.Context, _ *asynq.Task) error {
	_, err := t.svc.Run(ctx, time.Now())
	return err
}

// NewRunTask builds the enqueueable trigger for a reminder run.
func NewRunTask() *asynq.Task {
	return asynq.NewTask(taskname.RenewalReminderRun, nil)
}
